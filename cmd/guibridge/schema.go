package main

import (
	"encoding/json"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
)

func newSchemaCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the message contract as JSON schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]map[domain.MessageType]*openapi3.Schema{}
			if direction == "" || direction == "all" {
				out[domain.Inbound.String()] = protocol.Schemas(domain.Inbound)
				out[domain.Outbound.String()] = protocol.Schemas(domain.Outbound)
			} else {
				d, err := parseDirection(direction)
				if err != nil {
					return err
				}
				out[d.String()] = protocol.Schemas(d)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "all", "inbound, outbound or all")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
