package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"uav-logchat/flightdesk/internal/dataflash"
	"uav-logchat/flightdesk/internal/flightlog"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type summarizeOptions struct {
	format     string
	timeline   bool
	maxRecords int
	timeout    time.Duration
}

func summarizeCmd() *cobra.Command {
	opts := summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize <file|->",
		Short: "Print the flight summary of a .bin log",
		Long: `Decode a DataFlash log and print its flight summary.
Use "-" to read the log from stdin. With --timeline the MODE, EV and ERR
events are printed in time order instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openLog(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			return runSummarize(cmd.Context(), r, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "Output format (json, yaml)")
	cmd.Flags().BoolVar(&opts.timeline, "timeline", false, "Print the chronological event timeline")
	cmd.Flags().IntVar(&opts.maxRecords, "max-records", 0, "Abort after this many records (0 = unlimited)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort parsing after this long (0 = no limit)")

	return cmd
}

func openLog(stdin io.Reader, path string) (*dataflash.Reader, error) {
	if path == "-" {
		return dataflash.OpenReader(stdin)
	}
	return dataflash.Open(path)
}

func runSummarize(ctx context.Context, r *dataflash.Reader, out, errOut io.Writer, opts summarizeOptions) error {
	if opts.format != formatJSON && opts.format != formatYAML {
		return fmt.Errorf("unknown format %q (want json or yaml)", opts.format)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	store, err := flightlog.BuildStore(ctx, r, flightlog.Limits{MaxRecords: opts.maxRecords})
	if err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		fmt.Fprintf(errOut, "warning: log ended early after %d records: %v\n", store.Len(), err)
	}
	if n := r.Skipped(); n > 0 {
		fmt.Fprintf(errOut, "warning: skipped %d unreadable bytes\n", n)
	}

	var v any
	if opts.timeline {
		v = flightlog.MergeChronological(flightlog.ExtractEvents(store))
	} else {
		v = flightlog.BuildSummary(store)
	}

	body, err := encode(v, opts.format)
	if err != nil {
		return err
	}
	_, err = out.Write(body)
	return err
}

func encode(v any, format string) ([]byte, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if format == formatJSON {
		return append(body, '\n'), nil
	}
	return jsonToYAML(body)
}

// jsonToYAML re-encodes JSON as block-style YAML, keeping the JSON key order
// and field names. String values stay quoted so "true" or "10" keep their type.
func jsonToYAML(body []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	clearStyle(&doc)
	return yaml.Marshal(&doc)
}

func clearStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode:
		n.Style = 0
		for i := 0; i < len(n.Content); i += 2 {
			n.Content[i].Style = 0
			clearStyle(n.Content[i+1])
		}
	case yaml.DocumentNode, yaml.SequenceNode:
		n.Style = 0
		for _, c := range n.Content {
			clearStyle(c)
		}
	}
}
