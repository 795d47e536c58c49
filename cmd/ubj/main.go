// ubj - UBJSON codec CLI tool
//
// Usage:
//
//	ubj dump [file]                     Decode UBJSON and print a readable dump
//	ubj to-json [--pretty] [file]       Convert UBJSON to JSON
//	ubj from-json [file]                Convert JSON to canonical UBJSON
//	ubj convert --to <fmt> [file]       Transcode between ubj, json, cbor, msgpack
//	ubj version                         Print version info
//
// If no file is given, input is read from stdin. Files ending in .zst
// (or with --zstd) are transparently decompressed; an --out path ending
// in .zst is compressed on write.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hexwave/ubjson/ubjson"
	"github.com/hexwave/ubjson/ubjson/interop"
)

const version = "0.2.0"

var (
	log = zerolog.Nop()

	flagVerbose bool
	flagZstd    bool
	flagOut     string
	flagPretty  bool
	flagFrom    string
	flagTo      string
	flagDepth   int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ubj",
		Short:         "UBJSON codec tool: dump, convert, and transcode UBJSON data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if flagVerbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
				Level(level).With().Timestamp().Logger()
		},
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flagZstd, "zstd", false, "treat input as zstd-compressed regardless of extension")
	root.PersistentFlags().StringVarP(&flagOut, "out", "o", "", "output file (default stdout; .zst compresses)")
	root.PersistentFlags().IntVar(&flagDepth, "max-depth", 0, "maximum container nesting depth (0 = default)")

	dump := &cobra.Command{
		Use:   "dump [file]",
		Short: "Decode UBJSON and print a readable dump",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDump,
	}

	toJSON := &cobra.Command{
		Use:   "to-json [file]",
		Short: "Convert UBJSON to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runToJSON,
	}
	toJSON.Flags().BoolVar(&flagPretty, "pretty", false, "indent the JSON output")

	fromJSON := &cobra.Command{
		Use:   "from-json [file]",
		Short: "Convert JSON to canonical UBJSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFromJSON,
	}

	convert := &cobra.Command{
		Use:   "convert --to <fmt> [file]",
		Short: "Transcode between ubj, json, cbor, and msgpack",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConvert,
	}
	convert.Flags().StringVar(&flagFrom, "from", "ubj", "input format: ubj, json, cbor, msgpack")
	convert.Flags().StringVar(&flagTo, "to", "", "output format: ubj, json, cbor, msgpack (required)")
	_ = convert.MarkFlagRequired("to")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ubj %s\n", version)
		},
	}

	root.AddCommand(dump, toJSON, fromJSON, convert, versionCmd)
	return root
}

func runDump(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}
	v, err := decodeUBJ(data)
	if err != nil {
		return err
	}
	return writeOutput([]byte(ubjson.Render(v)))
}

func runToJSON(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}
	v, err := decodeUBJ(data)
	if err != nil {
		return err
	}
	out, err := ubjson.ToJSON(v)
	if err != nil {
		return err
	}
	if flagPretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		out = buf.Bytes()
	}
	return writeOutput(out)
}

func runFromJSON(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}
	v, err := ubjson.FromJSON(data)
	if err != nil {
		return err
	}
	return writeOutput(v.Encode())
}

func runConvert(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	var v *ubjson.Value
	switch flagFrom {
	case "ubj":
		v, err = decodeUBJ(data)
	case "json":
		v, err = ubjson.FromJSON(data)
	case "cbor":
		v, err = interop.FromCBOR(data)
	case "msgpack":
		v, err = interop.FromMsgpack(data)
	default:
		return fmt.Errorf("unknown input format %q", flagFrom)
	}
	if err != nil {
		return err
	}

	var out []byte
	switch flagTo {
	case "ubj":
		out = v.Encode()
	case "json":
		out, err = ubjson.ToJSON(v)
	case "cbor":
		out, err = interop.ToCBOR(v)
	case "msgpack":
		out, err = interop.ToMsgpack(v)
	default:
		return fmt.Errorf("unknown output format %q", flagTo)
	}
	if err != nil {
		return err
	}

	log.Debug().Str("from", flagFrom).Str("to", flagTo).
		Int("in_bytes", len(data)).Int("out_bytes", len(out)).Msg("converted")
	return writeOutput(out)
}

func decodeUBJ(data []byte) (*ubjson.Value, error) {
	start := time.Now()
	v, err := ubjson.DecodeWithOptions(data, ubjson.Options{MaxDepth: flagDepth})
	if err != nil {
		return nil, err
	}
	log.Debug().Int("bytes", len(data)).Dur("took", time.Since(start)).Msg("decoded")
	return v, nil
}

// readInput reads the file argument or stdin, decompressing zstd input
// when the filename ends in .zst or --zstd is set.
func readInput(args []string) ([]byte, error) {
	var r io.Reader = os.Stdin
	name := "-"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
		name = args[0]
	}

	if flagZstd || strings.HasSuffix(name, ".zst") {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	log.Debug().Str("input", name).Int("bytes", len(data)).Msg("read input")
	return data, nil
}

// writeOutput writes to --out or stdout, compressing when the output
// path ends in .zst.
func writeOutput(data []byte) error {
	if flagOut == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	f, err := os.Create(flagOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(flagOut, ".zst") {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if _, err := zw.Write(data); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}

	_, err = f.Write(data)
	return err
}
