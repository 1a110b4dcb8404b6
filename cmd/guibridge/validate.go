package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
)

const maxLineSize = 4 * 1024 * 1024

var errInvalidRecords = errors.New("invalid records found")

func newValidateCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate JSON lines against the message contract of one direction",
		Long: "Reads one JSON record per line from the given files, or stdin when none are given,\n" +
			"and reports the message type or the validation error for each line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDirection(direction)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return validateStream(cmd.OutOrStdout(), cmd.InOrStdin(), "stdin", d)
			}

			var failed bool
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				err = validateStream(cmd.OutOrStdout(), f, path, d)
				f.Close()
				if errors.Is(err, errInvalidRecords) {
					failed = true
					continue
				}
				if err != nil {
					return err
				}
			}
			if failed {
				return errInvalidRecords
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "inbound", "inbound (host -> renderer) or outbound (renderer -> host)")
	return cmd
}

func parseDirection(s string) (domain.Direction, error) {
	switch strings.ToLower(s) {
	case "inbound", "in":
		return domain.Inbound, nil
	case "outbound", "out":
		return domain.Outbound, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// validateStream prints one result per non-empty line and returns errInvalidRecords if any line failed
func validateStream(w io.Writer, r io.Reader, name string, d domain.Direction) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var failed bool
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		decoded, err := protocol.Decode(d, data)
		if err != nil {
			failed = true
			fmt.Fprintf(w, "%s:%d: %s: %v\n", name, line, protocol.KindOf(err), err)
			continue
		}
		fmt.Fprintf(w, "%s:%d: ok %s\n", name, line, decoded.Message.MessageType())
		for _, fb := range decoded.Fallbacks {
			fmt.Fprintf(w, "%s:%d: warning: %v\n", name, line, fb)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if failed {
		return errInvalidRecords
	}
	return nil
}
