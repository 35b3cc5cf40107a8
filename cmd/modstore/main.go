package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/config"
	"github.com/cfoust/modstore/pkg/guid"
	"github.com/cfoust/modstore/pkg/mods"
	"github.com/cfoust/modstore/pkg/resources"
	"github.com/cfoust/modstore/pkg/store"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Debug   bool     `help:"Whether to enable debug logging."`
	Configs []string `name:"config-file" short:"c" help:"Configuration files, applied in order." type:"existingfile"`
	Root    string   `help:"Content root, overriding the configuration."`

	Scan struct {
	} `cmd:"" help:"List every mounted mod and its assets."`

	Guid struct {
		Path string `arg:"" help:"Package-relative asset path, e.g. default/island.pf."`
	} `cmd:"" help:"Print the identifier of a path."`

	Path struct {
		Guid string `arg:"" help:"Asset identifier in hex."`
	} `cmd:"" help:"Print the path an identifier resolves to."`

	Load struct {
		Path string `arg:"" help:"Package-relative asset path to load."`
	} `cmd:"" help:"Load an asset and describe it."`

	Index struct {
	} `cmd:"" help:"Write each mod's index so it can be mounted without a scan."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func mount(settings *config.Config) (*store.Assets, error) {
	registry := assets.NewRegistry()
	atlas := resources.NewPaletteAtlas(resources.PALETTE_SIZE)
	if err := resources.Register(registry, atlas); err != nil {
		return nil, err
	}

	loader, err := mods.NewLoader(settings.Root, registry, mods.Options{
		Default:  settings.DefaultMod,
		UseIndex: settings.UseIndex,
	})
	if err != nil {
		return nil, err
	}

	return store.New(loader), nil
}

func scanCommand(content *store.Assets) {
	for _, mod := range content.Loader().Mods() {
		fmt.Printf("%s (%d assets)\n", mod.Name(), mod.Len())
		for _, path := range mod.Paths() {
			fmt.Printf("  %s %s\n", guid.Identify(path), path)
		}
	}
}

func loadCommand(content *store.Assets, path string) error {
	ref := content.LoadPath(path)
	if !ref.IsValid() {
		return fmt.Errorf("could not load %s", path)
	}
	defer ref.Release()

	fmt.Println(ref)
	return nil
}

func indexCommand(content *store.Assets) error {
	for _, mod := range content.Loader().Mods() {
		// The index has to reflect the disk, not a stale index
		if err := mod.Scan(); err != nil {
			return err
		}

		if err := mod.WriteIndex(); err != nil {
			return err
		}

		log.Info().Str("mod", mod.Name()).Int("assets", mod.Len()).Msg("wrote index")
	}
	return nil
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("modstore"),
		kong.Description("inspect mounted asset mods"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	settings, err := config.Process(CLI.Configs)
	if err != nil {
		writeError(err)
	}

	if CLI.Root != "" {
		settings.Root = CLI.Root
	}

	if CLI.Debug || settings.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	switch ctx.Command() {
	case "config":
		os.Stdout.Write(config.DEFAULT)
		return
	case "guid <path>":
		fmt.Println(guid.Identify(CLI.Guid.Path))
		return
	}

	content, err := mount(settings)
	if err != nil {
		log.Fatal().Err(err).Str("root", settings.Root).Msg("could not mount mods")
	}

	switch ctx.Command() {
	case "scan":
		scanCommand(content)
	case "path <guid>":
		id, err := guid.Parse(CLI.Path.Guid)
		if err != nil {
			writeError(err)
		}
		fmt.Println(content.Loader().GetPath(id))
	case "load <path>":
		err = loadCommand(content, CLI.Load.Path)
	case "index":
		err = indexCommand(content)
	}

	if err != nil {
		writeError(err)
	}
}
