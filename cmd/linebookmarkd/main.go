// Command linebookmarkd tails a set of files and forwards each line,
// with a persisted bookmark, to one or more lumberjack servers.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boltdb/bolt"
	"github.com/spf13/cobra"
	"github.com/technoweenie/grohl"

	linebookmark "github.com/treetopinnovationab/BookmarkingStreamReader"
	"github.com/treetopinnovationab/BookmarkingStreamReader/client"
	"github.com/treetopinnovationab/BookmarkingStreamReader/lumberjack"
)

func main() {
	var configFile string
	var stdout bool

	root := &cobra.Command{
		Use:   "linebookmarkd",
		Short: "Tail files and forward lines to lumberjack servers, resuming by bookmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return fmt.Errorf("--config is required")
			}
			return run(configFile, stdout)
		},
	}
	root.Flags().StringVar(&configFile, "config", "", "configuration file path")
	root.Flags().BoolVar(&stdout, "stdout", false, "also print every forwarded line to stdout, for local development")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

func run(configFile string, stdout bool) error {
	grohl.AddContext("app", "linebookmarkd")

	config, err := linebookmark.LoadConfiguration(configFile)
	if err != nil {
		return fmt.Errorf("opening configuration file: %w", err)
	}

	clients, err := buildClients(config)
	if err != nil {
		return err
	}
	if stdout {
		clients = append(clients, &client.StdoutClient{})
	}

	db, err := bolt.Open(config.State, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer db.Close()
	snapshotter := &linebookmark.BoltSnapshotter{DB: db}

	if config.Statistics.Addr != "" {
		statsServer := &linebookmark.StatisticsServer{
			Statistics: linebookmark.GlobalStatistics,
			Addr:       config.Statistics.Addr,
		}

		go func() {
			err := statsServer.ListenAndServe()
			grohl.Report(err, grohl.Data{"msg": "stats server failed to start"})
		}()
	}

	spoolSize := config.Network.SpoolSize
	if spoolSize == 0 {
		spoolSize = 1024
	}

	supervisor := linebookmark.NewSupervisor(config.Files, clients, snapshotter)
	supervisor.SpoolSize = spoolSize
	supervisor.GlobRefresh = 15 * time.Second

	supervisor.Start()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-signalCh
	fmt.Printf("received %s, shutting down cleanly ...\n", sig)
	supervisor.Stop()
	fmt.Printf("done shutting down\n")

	return nil
}

// buildClients constructs one lumberjack.Client per configured server.
// When no TLS configuration can be built (for example, no certificate/key
// pair is configured), the client connects without TLS rather than
// aborting startup.
func buildClients(config *linebookmark.Configuration) ([]client.Client, error) {
	clients := make([]client.Client, 0, len(config.Network.Servers))

	for _, server := range config.Network.Servers {
		options := &lumberjack.ClientOptions{
			Network:           "tcp",
			Address:           server.Addr,
			ConnectionTimeout: time.Duration(config.Network.Timeout) * time.Second,
			SendTimeout:       time.Duration(config.Network.Timeout) * time.Second,
			Backoff:           &linebookmark.ExponentialBackoff{Minimum: 1 * time.Second, Maximum: 30 * time.Second},
		}

		tlsConfig, err := config.BuildTLSConfig()
		if err != nil {
			grohl.NewContext(grohl.Data{"ns": "main", "fn": "buildClients"}).
				Log(grohl.Data{"msg": "no TLS certificate configured, connecting without TLS", "addr": server.Addr})
		} else {
			tlsConfig.ServerName = server.Name
			options.TLSConfig = tlsConfig
		}

		clients = append(clients, lumberjack.NewClient(options))
	}

	return clients, nil
}
