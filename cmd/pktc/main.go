package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/netengine"
	"github.com/vuuvv/netengine/log"
	"github.com/vuuvv/netengine/spec"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pktc: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pktc", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	dir := fs.String("dir", "", "directory of packet spec XML files")
	skipSchema := fs.Bool("skip-schema", false, "skip schema validation")
	out := fs.String("out", "", "output file for the YAML dump, - for stdout")
	level := fs.String("log-level", "", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.SpecDir = *dir
		case "skip-schema":
			cfg.SkipSchema = *skipSchema
		case "out":
			cfg.Output = *out
		case "log-level":
			cfg.LogLevel = *level
		}
	})

	logger, err := log.New(cfg.LogLevel, true)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	runID := uuid.NewString()
	log.SetDefaultLogger(logger.With(zap.String("run", runID)))

	return compile(cfg, os.Stdout)
}

func compile(cfg config, stdout io.Writer) error {
	options := spec.ParseOptionsNone
	if cfg.SkipSchema {
		options = spec.SkipSchemaValidation
	}

	log.Info("compiling packet specs", zap.String("dir", cfg.SpecDir), zap.Bool("skipSchema", cfg.SkipSchema))
	scheme, err := netengine.NewSchemeFromDir(cfg.SpecDir, options)
	if err != nil {
		log.Error(err)
		return err
	}

	if cfg.Output == "-" || cfg.Output == "" {
		err = scheme.DumpYAML(stdout)
	} else {
		err = writeFile(cfg.Output, scheme.DumpYAML)
	}
	if err != nil {
		return err
	}
	log.Info("packet specs compiled", zap.Int("packets", len(scheme.States())), zap.String("output", cfg.Output))
	return nil
}

// writeFile 写入失败时返回写入错误, 否则返回关闭文件的错误
func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close '%s': %s", path, cerr.Error())
		}
	}()
	return write(f)
}
