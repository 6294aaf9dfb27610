package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/alecthomas/kingpin.v2"

	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/client"
	"gitlab.lrz.de/protocol-design-sose-2022-team-0/tftp/messages"
)

var (
	host      = kingpin.Arg("host", "The TFTP server (hostname or IP address).").Required().String()
	operation = kingpin.Arg("operation", "get downloads the file, put uploads it.").Required().Enum("get", "put")
	filename  = kingpin.Arg("filename", "Name of the file to transfer.").Required().String()
	port      = kingpin.Flag("port", "Request port of the server.").Short('p').Default(strconv.Itoa(messages.DefaultPort)).Int()
	local     = kingpin.Flag("local", "Local path to read from or write to (get: base name of filename, put: filename).").Short('l').String()
	timeout   = kingpin.Flag("timeout", "How long to wait for each response.").Default("5s").Duration()
	retries   = kingpin.Flag("retries", "Retransmissions after a timeout before giving up.").Default("5").Int()
	markovP   = kingpin.Flag("loss-p", "Loss probability of the Markov chain model after a delivered packet.").Default("0").Float64()
	markovQ   = kingpin.Flag("loss-q", "Loss probability of the Markov chain model after a lost packet.").Default("0").Float64()
	verbose   = kingpin.Flag("verbose", "Log protocol details to stderr.").Short('v').Bool()
)

func main() {
	kingpin.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *port <= 0 || *port > 65535 {
		kingpin.Fatalf("port must be between 1 and 65535")
	}

	localName := localPath(*operation, *filename, *local)

	clientConfig := client.DefaultConfig
	clientConfig.Timeout = *timeout
	clientConfig.Retries = *retries
	clientConfig.Mode = messages.ModeOctet
	clientConfig.MarkovP = *markovP
	clientConfig.MarkovQ = *markovQ
	clientConfig.Logger = logger

	var stats *client.Stats
	var err error
	if *operation == "get" {
		stats, err = client.Download(*host, *port, *filename, localName, &clientConfig)
	} else {
		stats, err = client.Upload(*host, *port, localName, *filename, &clientConfig)
	}

	report(os.Stdout, *operation, *filename, stats, err)
	if err != nil {
		os.Exit(1)
	}
}

// localPath picks the local side of the transfer. A download lands in the
// working directory under the base name of the remote file, an upload reads
// filename as given.
func localPath(operation, filename, local string) string {
	if local != "" {
		return local
	}
	if operation == "get" {
		return filepath.Base(filename)
	}
	return filename
}
