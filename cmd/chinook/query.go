package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/chinook/config"
	"github.com/syssam/chinook/graph"
)

// errNotExecuted is returned when the request was rejected before
// execution. The response is still written.
var errNotExecuted = errors.New("request rejected")

func newQueryCmd(configPath *string) *cobra.Command {
	var (
		vars      string
		operation string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "query [document|-]",
		Short: "Execute one GraphQL request and print the response",
		Example: `  chinook query '{ artist(id: 1) { name albums { title } } }'
  chinook query --vars '{"t":"Facelets"}' 'query($t: String) { albums(title: $t) { id } }'
  echo '{ track(id: 1) { name price } }' | chinook query -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "msgpack" {
				return fmt.Errorf("unknown format %q, want json or msgpack", format)
			}
			req := &graph.Request{Query: args[0], OperationName: operation}
			if req.Query == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read query: %w", err)
				}
				req.Query = string(b)
			}
			if vars != "" {
				dec := json.NewDecoder(strings.NewReader(vars))
				dec.UseNumber()
				if err := dec.Decode(&req.Variables); err != nil {
					return fmt.Errorf("vars: %w", err)
				}
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			resp := a.exec.Execute(cmd.Context(), req)
			if err := writeResponse(cmd.OutOrStdout(), format, resp); err != nil {
				return err
			}
			if !resp.Executed {
				return errNotExecuted
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&vars, "vars", "", "variables as a JSON object")
	cmd.Flags().StringVar(&operation, "operation", "", "operation to run when the document has several")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or msgpack")
	return cmd
}

func writeResponse(w io.Writer, format string, resp *graph.Response) error {
	if format == "msgpack" {
		return msgpack.NewEncoder(w).Encode(resp)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
