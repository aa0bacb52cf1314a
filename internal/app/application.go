package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/config"
	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/profiles"
	"github.com/kadirbelkuyu/dbddl/pkg/interactive"
	"github.com/kadirbelkuyu/dbddl/pkg/logger"
)

const defaultProfileDir = "profiles"

type Application struct {
	selector       *interactive.Selector
	out            io.Writer
	printBanner    func()
	profileManager *profiles.Manager
	service        *Service
	cfg            *config.Config
}

// NewApplication builds the interactive front end around cfg. cfg is edited
// in place as the user changes settings.
func NewApplication(in io.Reader, out io.Writer, cfg *config.Config, log *logger.Logger, printBanner func()) *Application {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	return &Application{
		selector:       interactive.NewSelector(in, out),
		out:            out,
		printBanner:    printBanner,
		profileManager: profiles.NewManager(defaultProfileDir),
		service:        NewService(log, out),
		cfg:            cfg,
	}
}

func (a *Application) RunInteractive(ctx context.Context) error {
	if a.printBanner != nil {
		a.printBanner()
	}
	fmt.Fprintln(a.out, "Interactive mode is ready. Press Ctrl+C or choose option 6 to exit.")

	if err := a.chooseProfile(); err != nil {
		if errors.Is(err, io.EOF) {
			return a.exit()
		}
		return err
	}

	for {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Select an operation:")
		fmt.Fprintln(a.out, "  1) Generate DDL")
		fmt.Fprintln(a.out, "  2) List dialects")
		fmt.Fprintln(a.out, "  3) Show the type map of a dialect")
		fmt.Fprintln(a.out, "  4) Extract a schema document from PostgreSQL")
		fmt.Fprintln(a.out, "  5) Save the current settings as a profile")
		fmt.Fprintln(a.out, "  6) Exit")
		fmt.Fprintln(a.out)

		choice, err := a.selector.Ask("Choice")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return a.exit()
			}
			return err
		}

		var (
			action string
			runErr error
		)
		switch strings.ToLower(choice) {
		case "1", "generate":
			action, runErr = "Generation", a.handleGenerate(ctx)
		case "2", "dialects":
			ListDialects(a.out)
		case "3", "types":
			action, runErr = "Listing", a.handleTypes()
		case "4", "extract":
			action, runErr = "Extraction", a.handleExtract(ctx)
		case "5", "save":
			action, runErr = "Saving", a.handleSave()
		case "6", "exit", "quit", "q":
			return a.exit()
		default:
			fmt.Fprintln(a.out, "Invalid selection. Try again.")
		}

		if runErr != nil {
			if errors.Is(runErr, io.EOF) {
				return a.exit()
			}
			fmt.Fprintf(a.out, "%s failed: %v\n", action, runErr)
		}
	}
}

func (a *Application) exit() error {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Exiting interactive mode.")
	return nil
}

// chooseProfile replaces the current settings with a saved profile when the
// user picks one.
func (a *Application) chooseProfile() error {
	list, err := a.profileManager.List("")
	if err != nil {
		return err
	}

	selected, err := a.selector.SelectProfile(list)
	if err != nil || selected == nil {
		return err
	}

	cfg, err := config.LoadConfig(selected.Path)
	if err != nil {
		fmt.Fprintf(a.out, "Failed to load %s: %v\n", selected.Name, err)
		return nil
	}
	a.cfg = cfg
	return nil
}

func (a *Application) handleGenerate(ctx context.Context) error {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Generate DDL")

	available := make([]*ddl.Dialect, 0)
	for _, key := range ddl.List() {
		available = append(available, ddl.MustGet(key))
	}

	names, err := a.selector.SelectDialects(available, a.cfg.Dialects)
	if err != nil {
		return err
	}
	a.cfg.Dialects = names

	a.cfg.Input = a.selector.Prompt("Schema document (leave empty to extract from the source database)", a.cfg.Input)
	a.cfg.Generation = a.selector.GetGenerationOptions(a.cfg.Generation)
	a.cfg.Output = a.selector.Prompt("Output file (leave empty for stdout)", a.cfg.Output)

	target := "stdout"
	if a.cfg.Output != "" {
		target = a.cfg.Output
	}
	if !a.selector.ConfirmAction("DDL generation", target) {
		fmt.Fprintln(a.out, "Generation cancelled.")
		return nil
	}

	outputs, err := a.service.Generate(ctx, a.cfg)
	if err != nil {
		return err
	}
	RenderWarnings(a.out, outputs)
	return nil
}

func (a *Application) handleTypes() error {
	def := ""
	if len(a.cfg.Dialects) > 0 {
		def = a.cfg.Dialects[0]
	}
	name := a.selector.Prompt("Dialect", def)
	return ListTypes(a.out, name)
}

func (a *Application) handleExtract(ctx context.Context) error {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Extract a schema document")

	src := &a.cfg.Source
	src.Host = a.selector.Prompt("Host", src.Host)
	port := a.selector.Prompt("Port", fmt.Sprintf("%d", src.Port))
	if _, err := fmt.Sscanf(port, "%d", &src.Port); err != nil {
		return fmt.Errorf("invalid port %q", port)
	}
	src.Database = a.selector.Prompt("Database name", src.Database)
	src.Username = a.selector.Prompt("Username", src.Username)
	src.Password = a.selector.Prompt("Password (leave blank for none)", src.Password)
	src.Schema = a.selector.Prompt("Schema to extract (leave empty for all)", src.Schema)

	path := a.selector.Prompt("Write the document to (leave empty for stdout)", "")
	target := "stdout"
	if path != "" {
		target = path
	}
	if !a.selector.ConfirmAction("schema extraction", target) {
		fmt.Fprintln(a.out, "Extraction cancelled.")
		return nil
	}

	if _, err := a.service.ExtractTo(ctx, *src, path); err != nil {
		return err
	}
	if path != "" {
		a.cfg.Input = path
	}
	return nil
}

func (a *Application) handleSave() error {
	name := a.selector.Prompt("Profile name (leave empty for a generated one)", "")
	profile, err := a.profileManager.Save(name, a.cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile saved to %s\n", profile.Path)
	return nil
}
