// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"

	"pymon/internal/compiler"
)

var log = commonlog.GetLogger("pymon")

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: pymon <contract.py | contracts-dir> ...")
		fmt.Println()
		fmt.Println("Artifacts are written to $PYMON_BUILD_DIR (default \"build\").")
		os.Exit(1)
	}

	verbosity := 0
	if env.Bool("PYMON_DEBUG") {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	buildDir := env.Str("PYMON_BUILD_DIR", "build")

	sources, err := collectSources(os.Args[1:])
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		color.Yellow("no .py contract files found")
		os.Exit(1)
	}

	startTime := time.Now()
	failed := 0
	for _, path := range sources {
		if err := compileFile(path, buildDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			color.Red("failed to compile %s", path)
			failed++
		}
	}

	duration := formatDuration(time.Since(startTime))
	if failed > 0 {
		color.Red("%d of %d contract(s) failed after %s", failed, len(sources), duration)
		os.Exit(1)
	}
	color.Green("Successfully compiled %d contract(s) in %s", len(sources), duration)
}

// collectSources expands the arguments into a sorted list of .py files.
// Directories are searched one level deep, the way a contracts/ folder
// is laid out.
func collectSources(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var sources []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			sources = append(sources, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".py") {
				add(filepath.Join(arg, entry.Name()))
			}
		}
	}

	sort.Strings(sources)
	return sources, nil
}

func compileFile(path, buildDir string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	log.Infof("compiling %s", path)
	artifact, err := compiler.Compile(path, string(source))
	if err != nil {
		return err
	}

	outDir := filepath.Join(buildDir, artifact.ContractName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	artifactJSON, err := artifact.MarshalIndent()
	if err != nil {
		return err
	}
	abiJSON, err := artifact.MarshalABI()
	if err != nil {
		return err
	}

	files := map[string][]byte{
		artifact.ContractName + ".json":         artifactJSON,
		artifact.ContractName + "_abi.json":     abiJSON,
		artifact.ContractName + "_bytecode.txt": []byte(artifact.Bytecode),
	}
	for name, content := range files {
		target := filepath.Join(outDir, name)
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}

	log.Infof("wrote artifact for %s (%d bytes of bytecode)",
		artifact.ContractName, (len(artifact.Bytecode)-2)/2)
	color.Green("  %s -> %s", path, outDir)
	color.Blue("      functions: %s", strings.Join(artifact.Metadata.Functions, ", "))
	color.Blue("      gas estimate: %d", artifact.Metadata.GasEstimate)
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
