package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "filebox",
	Short: "File storage toolkit for S3-compatible object stores",
	Long:  `filebox mirrors local directory trees into an S3-compatible object store and serves a small API that issues time-limited presigned URLs for uploads and downloads.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")

	// Store flags shared by both subcommands
	for _, cmd := range []*cobra.Command{syncCmd, serveCmd} {
		cmd.Flags().String("endpoint", "", "Object store endpoint")
		cmd.Flags().String("access-key", "", "Object store access key")
		cmd.Flags().String("secret-key", "", "Object store secret key")
		cmd.Flags().String("bucket", "", "Bucket name (required)")
		cmd.Flags().Bool("secure", true, "Use HTTPS for the store")
		cmd.Flags().String("log-level", "info", "Log level (debug/info/warn/error)")
	}

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
