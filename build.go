//go:build ignore

// build.go - fuelbreak build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, clean, run

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module     = "fuelbreak"
	versionPkg = module + "/pkg/contracts"
)

var (
	distDir = "dist"
	logsDir = "logs"
	outDir  = "output"

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	input := flag.String("input", "", "Input spreadsheet for the run target")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	switch *target {
	case "build":
		build(*verbose)
	case "test":
		runTests(*verbose)
	case "clean":
		clean()
	case "run":
		build(*verbose)
		runAnalysis(*input)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Done in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        fuelbreak - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func binaryPath() string {
	name := module
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(distDir, name)
}

// gitCommit returns the short HEAD hash, or "unknown" outside a repository
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func build(verbose bool) {
	printInfo("Building fuelbreak...")

	ldflags := fmt.Sprintf("-s -w -X %s.BuildTime=%s -X %s.GitCommit=%s",
		versionPkg, time.Now().UTC().Format(time.RFC3339),
		versionPkg, gitCommit())

	args := []string{"build"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", binaryPath(), "./cmd/fuelbreak")

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Build failed: %v", err))
		os.Exit(1)
	}

	if info, err := os.Stat(binaryPath()); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", binaryPath(), float64(info.Size())/1024/1024))
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func runAnalysis(input string) {
	args := []string{}
	if input != "" {
		args = append(args, "-input", input)
	}

	printInfo("Running analysis...")
	cmd := exec.Command(binaryPath(), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Analysis failed: %v", err))
		os.Exit(1)
	}
}

func clean() {
	printInfo("Cleaning build artifacts, logs and outputs...")
	for _, dir := range []string{distDir, logsDir, outDir} {
		if err := os.RemoveAll(dir); err != nil {
			printError(fmt.Sprintf("Failed to remove %s: %v", dir, err))
		}
	}
	printSuccess("Cleaned")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-input=FILE]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  build   Build dist/fuelbreak with version information (default)")
	fmt.Println("  test    Run all tests with the race detector")
	fmt.Println("  clean   Remove dist/, logs/ and output/")
	fmt.Println("  run     Build, then analyse -input (or the configured input file)")
}
