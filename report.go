package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/client"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// outcome is the status line printed once the transfer loop has ended.
func outcome(operation string, filename string, stats *client.Stats, err error) string {
	if err == nil {
		verb := "Download"
		if operation == "put" {
			verb = "Upload"
		}
		line := successStyle.Render(fmt.Sprintf("%s completed: %s", verb, filename))
		if stats != nil {
			line += " " + detailStyle.Render(fmt.Sprintf("(%d bytes, %d blocks, %s, %s)",
				stats.Bytes, stats.Blocks, stats.ContentType, stats.Duration.Round(time.Millisecond)))
		}
		return line
	}

	var serr *client.ServerError
	var lerr *client.LocalFileError
	var perr *client.ProtocolError
	switch {
	case errors.Is(err, client.ErrTimeout):
		if operation == "put" {
			return failureStyle.Render("Timeout while sending data.")
		}
		return failureStyle.Render("Timeout while receiving data.")
	case errors.As(err, &serr):
		return failureStyle.Render("Error: " + serr.Error())
	case errors.As(err, &lerr):
		return failureStyle.Render("Local file error: " + lerr.Error())
	case errors.As(err, &perr):
		return failureStyle.Render("Protocol error: " + perr.Error())
	}
	return failureStyle.Render("Error: " + err.Error())
}

func report(w io.Writer, operation string, filename string, stats *client.Stats, err error) {
	fmt.Fprintln(w, outcome(operation, filename, stats, err))
}
