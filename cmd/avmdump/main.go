// avmdump loads class metadata bundles into a fresh domain and prints the
// resulting class structure.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/avm2/abc"
	"github.com/chazu/avm2/lib"
	"github.com/chazu/avm2/manifest"
	"github.com/chazu/avm2/vm"
)

var log = commonlog.GetLogger("avm2.avmdump")

func main() {
	configPath := flag.String("config", "", "Path to avm.toml (default: search upward from the working directory)")
	output := flag.String("o", "", "Write the merged input bundles to this file as CBOR")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides the config file)")
	trace := flag.Bool("trace", false, "Log class creation at info level")
	noVerify := flag.Bool("no-verify", false, "Skip the structural verifier")
	noBuiltins := flag.Bool("no-builtins", false, "Do not preload the builtin class library")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: avmdump [options] [bundles...]\n\n")
		fmt.Fprintf(os.Stderr, "Loads .cbor or .yaml class bundles into a domain and dumps every type.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  avmdump app.yaml                # Dump builtins plus app.yaml\n")
		fmt.Fprintf(os.Stderr, "  avmdump -o app.cbor app.yaml    # Also re-encode app.yaml as CBOR\n")
		fmt.Fprintf(os.Stderr, "  avmdump -config ./avm.toml      # Load the bundles the config lists\n")
	}
	flag.Parse()

	m, err := loadManifest(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := m.Logging.Verbosity
	if *verbosity >= 0 {
		level = *verbosity
	}
	if logFile := m.LogFile(); logFile != "" {
		commonlog.Configure(level, &logFile)
	} else {
		commonlog.Configure(level, nil)
	}

	opts := m.Options()
	if *trace {
		opts.TraceExecution = true
	}
	if *noVerify {
		opts.Verify = false
	}

	paths, err := m.BundlePaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	paths = append(paths, flag.Args()...)

	if err := run(opts, paths, *output, !*noBuiltins); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadManifest returns the explicit config, the nearest avm.toml, or an empty
// manifest rooted at the working directory.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = &manifest.Manifest{Dir: wd}
	}
	return m, nil
}

func run(opts vm.Options, paths []string, output string, builtins bool) error {
	natives := vm.NewNativeCatalog()
	vm.RegisterBuiltins(natives)
	domain := vm.NewDomain(vm.Config{Options: opts, Natives: natives})
	global := vm.NewScope(nil, nil)

	if builtins {
		b, err := lib.Builtins()
		if err != nil {
			return err
		}
		if _, err := domain.LoadBundle(b, global); err != nil {
			return err
		}
	}

	merged := &abc.Bundle{Name: "merged"}
	for _, path := range paths {
		b, err := abc.LoadBundleFile(path)
		if err != nil {
			return err
		}
		if _, err := domain.LoadBundle(b, global); err != nil {
			return err
		}
		merged.Classes = append(merged.Classes, b.Classes...)
	}

	domain.Trace(vm.NewTraceWriter(os.Stdout))

	if output == "" {
		return nil
	}
	data, err := abc.MarshalBundle(merged)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", output, err)
	}
	log.Infof("wrote %d classes to %s", len(merged.Classes), output)
	return nil
}
