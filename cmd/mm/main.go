package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vanderheijden86/mindmesh/pkg/config"
	"github.com/vanderheijden86/mindmesh/pkg/debug"
	"github.com/vanderheijden86/mindmesh/pkg/export"
	"github.com/vanderheijden86/mindmesh/pkg/generate"
	"github.com/vanderheijden86/mindmesh/pkg/model"
	"github.com/vanderheijden86/mindmesh/pkg/ui"
	"github.com/vanderheijden86/mindmesh/pkg/version"
	"github.com/vanderheijden86/mindmesh/pkg/watcher"
	"github.com/vanderheijden86/mindmesh/pkg/wiki"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	topicFlag := flag.String("topic", "", "Start with this topic instead of the configured default")
	snapshotFlag := flag.String("snapshot", "", "Render the topic to a file (svg or png) and exit, no TUI")
	offlineFlag := flag.Bool("offline", false, "Use the built-in offline generator (no API calls)")
	noImagesFlag := flag.Bool("no-images", false, "Disable thumbnail lookups")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: mm [options]")
		fmt.Println("\nAn interactive mind-map study tool.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("mm %s\n", version.Version)
		os.Exit(0)
	}

	cfgPath := config.ConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}
	if *topicFlag != "" {
		cfg.UI.DefaultTopic = *topicFlag
	}

	gen := pickGenerator(cfg, *offlineFlag)

	var wikiClient *wiki.Client
	if !*noImagesFlag {
		wikiClient = wiki.NewClient()
	}

	// Headless snapshot export.
	if *snapshotFlag != "" {
		if err := renderSnapshot(gen, cfg, *snapshotFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *snapshotFlag)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "mm needs a terminal; use --snapshot for non-interactive export")
		os.Exit(1)
	}

	theme := ui.DefaultTheme(themeRenderer(cfg))
	m := ui.NewModel(cfg, theme, gen, wikiClient)

	if err := runTUIProgram(m, cfgPath); err != nil {
		fmt.Printf("Error running mind map: %v\n", err)
		os.Exit(1)
	}
}

// pickGenerator selects the generative backend: offline demo content unless
// an API key is configured or the provider insists.
func pickGenerator(cfg config.Config, offline bool) generate.Client {
	if offline || strings.EqualFold(cfg.Generate.Provider, "static") {
		return generate.Static{}
	}
	key := cfg.APIKey()
	if key == "" {
		fmt.Fprintf(os.Stderr, "Note: %s is not set, using offline demo content.\n", cfg.Generate.APIKeyEnv)
		return generate.Static{}
	}
	opts := []generate.OpenAIOption{}
	if cfg.Generate.Model != "" {
		opts = append(opts, generate.WithModel(cfg.Generate.Model))
	}
	return generate.NewOpenAIClient(key, cfg.Generate.BaseURL, opts...)
}

func themeRenderer(cfg config.Config) *lipgloss.Renderer {
	r := lipgloss.DefaultRenderer()
	if cfg.UI.Dark != nil {
		r.SetHasDarkBackground(*cfg.UI.Dark)
	}
	return r
}

func renderSnapshot(gen generate.Client, cfg config.Config, path string) error {
	topic := strings.TrimSpace(cfg.UI.DefaultTopic)
	if topic == "" {
		return fmt.Errorf("no topic: pass --topic or set ui.default_topic")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	concepts, err := gen.GenerateMap(ctx, topic)
	if err != nil {
		return fmt.Errorf("generate map for %q: %w", topic, err)
	}
	return export.SaveSnapshot(export.SnapshotOptions{
		Path: path,
		Data: model.BuildGraph(topic, concepts),
	})
}

func runTUIProgram(m *ui.Model, cfgPath string) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Live-reload the config file into the running program.
	if w, err := watcher.New(cfgPath, watcher.WithOnChange(func() {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			debug.Log("config reload: %v", err)
			return
		}
		p.Send(ui.ConfigReloadedMsg{Config: cfg})
	})); err == nil {
		if err := w.Start(); err == nil {
			defer w.Stop()
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set MM_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("MM_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	return err
}
