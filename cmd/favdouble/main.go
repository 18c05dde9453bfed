// favdouble CLI - interactive shell and server for the value registry
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/jdbancal/MyFavoriteDouble/config"
	"github.com/jdbancal/MyFavoriteDouble/dispatch"
	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/server"
	"github.com/jdbancal/MyFavoriteDouble/store"
)

func main() {
	verbosity := flag.Int("v", 0, "Log verbosity (0 = notices and up)")
	interactive := flag.Bool("i", false, "Start interactive shell")
	serveMode := flag.Bool("serve", false, "Start registry server (Connect HTTP/JSON)")
	listen := flag.String("listen", "", "Listen address (used with --serve, overrides config)")
	configDir := flag.String("config", "", "Directory containing favdouble.toml (default: walk up from cwd)")
	dbPath := flag.String("db", "", "Snapshot database path (overrides config)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: favdouble [options]\n\n")
		fmt.Fprintf(os.Stderr, "Hosts a registry of opaque numeric values behind integer handles.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  favdouble -i                  # Start interactive shell\n")
		fmt.Fprintf(os.Stderr, "  favdouble --serve             # Start server on the configured address\n")
		fmt.Fprintf(os.Stderr, "  favdouble --serve --listen :8080 --db snapshots.db\n")
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	var (
		cfg *config.Config
		err error
	)
	if *configDir != "" {
		cfg, err = config.Load(*configDir)
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", cwdErr)
			os.Exit(1)
		}
		cfg, err = config.FindAndLoad(cwd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	var shelf *store.Store
	if cfg.Store.Path != "" {
		shelf, err = store.Open(cfg.Store.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening snapshot store: %v\n", err)
			os.Exit(1)
		}
		defer shelf.Close()
	}

	if *serveMode {
		if err := runServer(cfg, shelf); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *interactive || flag.NArg() == 0 {
		runShell(shelf)
	}
}

func runServer(cfg *config.Config, shelf *store.Store) error {
	var opts []server.Option
	if shelf != nil {
		opts = append(opts, server.WithSnapshotStore(shelf))
	}
	if cfg.Server.SweepInterval.Std() > 0 && cfg.Server.SweepTTL.Std() > 0 {
		opts = append(opts, server.WithSweeper(cfg.Server.SweepInterval.Std(), cfg.Server.SweepTTL.Std()))
	}

	srv := server.New(opts...)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
	}()

	return srv.ListenAndServe(cfg.Server.Listen)
}

// runShell starts an interactive read-eval-print loop over a private
// registry.
func runShell(shelf *store.Store) {
	fmt.Println("favdouble shell (type 'exit' to quit, ':help' for commands)")
	fmt.Println()

	reg := registry.New()
	d := dispatch.NewDispatcher(reg, os.Stdout)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(">> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if strings.HasPrefix(line, ":") {
			handleShellCommand(reg, line)
			continue
		}

		fields := strings.Fields(line)
		if handled := handleStoreWord(reg, shelf, fields); handled {
			continue
		}

		cmd, err := dispatch.Parse(fields)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		res, err := d.Do(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printResult(fields[0], res)
	}

	fmt.Println()
}

// handleStoreWord executes the save/restore/snapshots vocabulary, which
// needs the durable store and so lives outside the core command set.
// Returns false when the word belongs to the dispatcher.
func handleStoreWord(reg *registry.Registry, shelf *store.Store, fields []string) bool {
	switch fields[0] {
	case "save", "restore", "snapshots":
	default:
		return false
	}
	if shelf == nil {
		fmt.Println("Error: no snapshot store open (start with --db or set store.path)")
		return true
	}

	switch fields[0] {
	case "save":
		if len(fields) != 3 {
			fmt.Println("Usage: save <handle> <name>")
			return true
		}
		var h registry.Handle
		if _, err := fmt.Sscanf(fields[1], "%d", &h); err != nil {
			fmt.Printf("Error: bad handle %q\n", fields[1])
			return true
		}
		snap, err := reg.Save(h)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		if err := shelf.Put(fields[2], snap); err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		fmt.Printf("saved %q\n", fields[2])

	case "restore":
		if len(fields) != 2 {
			fmt.Println("Usage: restore <name>")
			return true
		}
		snap, err := shelf.Get(fields[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		h, err := reg.Restore(snap)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		fmt.Printf("handle %d\n", h)

	case "snapshots":
		names, err := shelf.List()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return true
		}
		for _, name := range names {
			fmt.Println(name)
		}
	}
	return true
}

// handleShellCommand handles shell meta-commands.
func handleShellCommand(reg *registry.Registry, cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Println("Commands:")
		fmt.Println("  new [handle]           Create a zero value, or copy an existing one")
		fmt.Println("  fromBuffer <number>    Create from a number (complex allowed, e.g. 2.5+1i)")
		fmt.Println("  display <handle>       Print a value")
		fmt.Println("  double <handle>        Export a value as a buffer")
		fmt.Println("  plus <a> <b>           Sum two values into a new one")
		fmt.Println("  isValid <handle>       Check handle liveness")
		fmt.Println("  delete <handle>        Release a handle")
		fmt.Println("  save <handle> <name>   Persist a value (needs --db)")
		fmt.Println("  restore <name>         Reload a persisted value (needs --db)")
		fmt.Println("  snapshots              List persisted values (needs --db)")
		fmt.Println("  :handles               List live handles")
		fmt.Println("  :help, :h, :?          Show this help")
		fmt.Println("  exit, quit             Exit shell")
	case ":handles":
		for _, h := range reg.Handles() {
			s, err := reg.Display(h)
			if err != nil {
				continue
			}
			fmt.Printf("%d: %s\n", h, s)
		}
	default:
		fmt.Printf("Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printResult prints the interesting part of a command result. Display
// already wrote its output through the dispatcher.
func printResult(word string, res dispatch.Result) {
	switch word {
	case "new", "fromBuffer", "plus":
		fmt.Printf("handle %d\n", res.Handle)
	case "isValid":
		fmt.Println(res.Valid)
	case "double":
		b := res.Buffer
		if b.IsComplex() {
			fmt.Printf("[%g + %gi]\n", b.Real[0], b.Imag[0])
		} else {
			fmt.Printf("[%g]\n", b.Real[0])
		}
	}
}
