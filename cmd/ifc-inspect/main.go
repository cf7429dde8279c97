package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	"github.com/dmytro-kravchyna/engine-web-ifc/api"
	"github.com/dmytro-kravchyna/engine-web-ifc/guid"
	"github.com/dmytro-kravchyna/engine-web-ifc/logging"
	"github.com/dmytro-kravchyna/engine-web-ifc/memengine"
	"github.com/dmytro-kravchyna/engine-web-ifc/observe"
	"github.com/dmytro-kravchyna/engine-web-ifc/p21"
)

// toolConfig is the optional YAML config file: logger setup plus loader
// settings overrides. Absent keys keep their defaults.
type toolConfig struct {
	Logging logging.Config        `yaml:"logging"`
	Loader  webifc.LoaderSettings `yaml:"loader"`
}

func main() {
	var (
		file        = flag.String("file", "", "Path to a STEP (.ifc) model file")
		configPath  = flag.String("config", "", "YAML config file (logging, loader settings)")
		typeName    = flag.String("type", "", "List lines of this entity type")
		lineID      = flag.Uint("line", 0, "Print one line with its arguments")
		savePath    = flag.String("save", "", "Re-serialize the model to this path")
		logLevel    = flag.String("log-level", "", "Override log verbosity (debug|info|warn|error|off)")
		encodeText  = flag.String("encode", "", "Encode text for a STEP string literal and exit")
		decodeText  = flag.String("decode", "", "Decode a STEP string literal and exit")
		genGUID     = flag.Bool("guid", false, "Generate an IFC identifier and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		version     = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	switch {
	case *version:
		fmt.Println(webifc.Version)
		return
	case *genGUID:
		fmt.Println(guid.New())
		return
	case *encodeText != "":
		fmt.Println(p21.Encode(*encodeText))
		return
	case *decodeText != "":
		decoded, err := p21.Decode(*decodeText)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(decoded)
		return
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: ifc-inspect -file <model.ifc> [-type IFCWALL] [-line id] [-save out.ifc]")
		fmt.Fprintln(os.Stderr, "       ifc-inspect -file <model.ifc> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       ifc-inspect -encode <text> | -decode <literal> | -guid")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*file, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*file, cfg, *typeName, uint32(*lineID), *savePath, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (toolConfig, error) {
	var cfg toolConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func run(file string, cfg toolConfig, typeName string, lineID uint32, savePath, logLevel string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	log := logging.New(cfg.Logging)
	defer log.Sync()

	a := api.New(memengine.New(),
		api.WithLogger(log.Logger),
		api.WithMetrics(observe.NewRecorder("ifc_inspect_api")))

	if logLevel != "" {
		lvl, ok := parseEngineLevel(logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		log.SetLevel(lvl)
		a.SetLogLevel(lvl)
	}

	h, err := a.OpenModel(&cfg.Loader, data)
	if err != nil {
		return fmt.Errorf("open model: %w", err)
	}
	defer a.CloseModel(h)

	schema, err := a.ModelSchema(h)
	if err != nil {
		schema = "(unknown)"
	}
	maxID, err := a.MaxExpressID(h)
	if err != nil {
		return err
	}
	ids, err := a.AllLineIDs(h)
	if err != nil {
		return err
	}

	fmt.Printf("Model: %s\n", file)
	fmt.Printf("Schema: %s\n", schema)
	fmt.Printf("Size: %d bytes\n", a.ModelSize(h))
	fmt.Printf("Lines: %d (max express ID %d)\n", len(ids), maxID)

	// Tally lines per entity type.
	counts := make(map[string]int)
	for _, id := range ids {
		counts[a.NameFromTypeCode(a.LineType(h, id))]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Printf("\nEntity types:\n")
	for _, name := range names {
		fmt.Printf("  %6d  %s\n", counts[name], name)
	}

	if typeName != "" {
		code := a.TypeCodeFromName(strings.ToUpper(typeName))
		typed, err := a.LineIDsWithType(h, code)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s lines:\n", strings.ToUpper(typeName))
		for _, id := range typed {
			fmt.Printf("  %s\n", formatLine(a, h, id))
		}
	}

	if lineID != 0 {
		if !a.IsValidExpressID(h, lineID) {
			return fmt.Errorf("no line #%d in model", lineID)
		}
		fmt.Printf("\n%s\n", formatLine(a, h, lineID))
	}

	if savePath != "" {
		out, err := a.SaveModel(h, true)
		if err != nil {
			return fmt.Errorf("save model: %w", err)
		}
		if err := os.WriteFile(savePath, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", savePath, err)
		}
		fmt.Printf("\nSaved %d bytes to %s\n", len(out), savePath)
	}

	return nil
}

func parseEngineLevel(s string) (webifc.LogLevel, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return webifc.LogLevelDebug, true
	case "info":
		return webifc.LogLevelInfo, true
	case "warn":
		return webifc.LogLevelWarn, true
	case "error":
		return webifc.LogLevelError, true
	case "off":
		return webifc.LogLevelOff, true
	}
	return 0, false
}

// formatLine renders one data line roughly the way it appears in the
// STEP file. Nested sets are summarized by their top-level references.
func formatLine(a *api.API, h webifc.Handle, id uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d=%s(", id, a.NameFromTypeCode(a.LineType(h, id)))
	n, err := a.ArgumentCount(h, id)
	if err != nil {
		return b.String() + "?)"
	}
	for i := uint32(0); i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatArgument(a, h, id, i))
	}
	b.WriteByte(')')
	return b.String()
}

func formatArgument(a *api.API, h webifc.Handle, id, index uint32) string {
	tt, err := a.ArgumentTokenType(h, id, index)
	if err != nil {
		return "?"
	}
	switch tt {
	case webifc.TokenString:
		s, err := a.StringArgument(h, id, index)
		if err != nil {
			return "?"
		}
		return "'" + p21.Encode(s) + "'"
	case webifc.TokenEnum:
		s, err := a.StringArgument(h, id, index)
		if err != nil {
			return "?"
		}
		return "." + s + "."
	case webifc.TokenLabel:
		s, err := a.StringArgument(h, id, index)
		if err != nil {
			return "?"
		}
		return s + "(...)"
	case webifc.TokenReal:
		v, err := a.DoubleArgument(h, id, index)
		if err != nil {
			return "?"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case webifc.TokenInteger:
		v, err := a.IntArgument(h, id, index)
		if err != nil {
			return "?"
		}
		return strconv.FormatInt(v, 10)
	case webifc.TokenRef:
		ref, err := a.RefArgument(h, id, index)
		if err != nil {
			return "?"
		}
		return fmt.Sprintf("#%d", ref)
	case webifc.TokenEmpty:
		return "$"
	case webifc.TokenSetBegin:
		refs, err := a.SetArgument(h, id, index)
		if err != nil {
			return "(?)"
		}
		if len(refs) == 0 {
			return "(...)"
		}
		parts := make([]string, len(refs))
		for i, ref := range refs {
			parts[i] = fmt.Sprintf("#%d", ref)
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "*"
	}
}
