// Command cfgdump verifies a binary configuration file and prints it as YAML.
//
//	cfgdump [-schema schema.yaml] [-root Table] [-unchecked] app.bin
//
// Without -schema the built-in AppConfig descriptor is used.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/zcconfig"
	"github.com/rawbytedev/zcconfig/pkg/configexample"
	"github.com/rawbytedev/zcconfig/pkg/layout"
	"github.com/rawbytedev/zcconfig/pkg/loader"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cfgdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaPath := fs.String("schema", "", "YAML schema descriptor (default: built-in AppConfig)")
	root := fs.String("root", "", "root table name (default: descriptor root)")
	unchecked := fs.Bool("unchecked", false, "skip verification; the file must be trusted")
	sizePrefixed := fs.Bool("size-prefixed", false, "buffer starts with a 4-byte size prefix")
	noUTF8 := fs.Bool("no-utf8", false, "do not validate strings as UTF-8")
	identifier := fs.String("identifier", "", "required 4-byte file identifier")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: cfgdump [flags] file")
		fs.PrintDefaults()
		return 2
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(level).With().Timestamp().Logger()

	desc := configexample.Descriptor
	if *schemaPath != "" {
		data, err := os.ReadFile(*schemaPath)
		if err != nil {
			logger.Error().Err(err).Msg("read schema")
			return 1
		}
		if desc, err = layout.ParseYAML(data); err != nil {
			logger.Error().Err(err).Str("schema", *schemaPath).Msg("parse schema")
			return 1
		}
	}
	if *root != "" {
		if _, ok := desc.Table(*root); !ok {
			logger.Error().Str("root", *root).Msg("schema declares no such table")
			return 1
		}
	}

	opts := zcconfig.DefaultOptions()
	opts.SizePrefixed = *sizePrefixed
	opts.ValidateUTF8 = !*noUTF8
	opts.Identifier = *identifier

	var view zcconfig.View
	if *unchecked {
		src, err := loader.OpenCompressed(fs.Arg(0), logger)
		if err != nil {
			logger.Error().Err(err).Msg("open")
			return 1
		}
		defer src.Close()
		view = zcconfig.NewReader(desc, opts).UncheckedView(src.Bytes(), *root)
	} else {
		l, err := loader.Load(loader.Config{
			Path:            fs.Arg(0),
			RootType:        *root,
			Options:         opts,
			AllowCompressed: true,
		}, desc, logger)
		if err != nil {
			return 1
		}
		defer l.Close()
		view = l.View
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(view.Map()); err != nil {
		logger.Error().Err(err).Msg("encode")
		return 1
	}
	if err := enc.Close(); err != nil {
		logger.Error().Err(err).Msg("encode")
		return 1
	}
	return 0
}
