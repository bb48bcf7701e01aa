package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/solisoft/soli-lang-sub001/internal/builtins/codec"
	"github.com/solisoft/soli-lang-sub001/internal/builtins/db"
	"github.com/solisoft/soli-lang-sub001/internal/evaluator"
	"github.com/solisoft/soli-lang-sub001/internal/lexer"
	"github.com/solisoft/soli-lang-sub001/internal/object"
	"github.com/solisoft/soli-lang-sub001/internal/parser"
	"github.com/solisoft/soli-lang-sub001/internal/repl"
	"github.com/solisoft/soli-lang-sub001/internal/util"
)

const DefaultRootPath = "."

var (
	// Version is stamped at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool

	logLevel string
	logFile  string

	rootPath string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&rootPath, "root", DefaultRootPath, "Set the root context for the program (location of soli.toml)")
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	logWriter := configureLogWriter()
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config := util.Configuration{
		Version:   Version,
		BuildDate: BuildDate,
		Commit:    Commit,
		RootPath:  rootPath,
		SoliHome:  os.Getenv("SOLI_HOME"),
	}
	if err := config.LoadProjectFile(); err != nil {
		fmt.Fprintf(os.Stderr, "soli: invalid project file: %v\n", err)
		os.Exit(1)
	}
	if config.Database.Driver != "" {
		db.SetDefault(config.Database.Driver, config.Database.DSN)
	}

	if flag.NArg() > 0 {
		os.Exit(runFile(flag.Arg(0)))
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if interactive {
		printVersion()
	}
	repl.Start(os.Stdin, os.Stdout, interactive)
}

func runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "soli: %v\n", err)
		return 1
	}

	input := string(src)
	l := lexer.New(input)
	p := parser.New(l, input)

	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		for _, msg := range p.Errors() {
			fmt.Fprintf(os.Stderr, "%s: %s\n", filepath.Base(path), msg)
		}
		return 1
	}

	env := object.NewEnvironment()
	e := evaluator.New(env)
	db.Register(env)
	codec.Register(env)

	result := e.Eval(program)
	if errObj, ok := result.(*object.Error); ok {
		slog.Error("script failed", slog.String("file", path), slog.String("error", errObj.Message))
		fmt.Fprintf(os.Stderr, "%s\n", errObj.Inspect())
		return 1
	}
	return 0
}

func configureLogWriter() *os.File {
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	logWriter, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("soli version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: soli [options] [filename]

Options:
  -root <path>       Set the root context for the program (location of soli.toml). Default is '.'
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the Soli programming language.

Examples:
  soli                          Start an interactive session
  soli myfile.soli              Execute the provided Soli file
  soli -log-level=debug         Start with debug logging enabled

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
