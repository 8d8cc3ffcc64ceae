// Command stablessz-inspect round-trips a StableContainer value
// through the SSZ codec and inspects it two ways: as the wire-decoded
// StableContainer itself, and as a Profile sharing that exact same
// Merkle backing. A Profile over a StableContainer base has an
// identical tree layout to its base, so no separate wire decode is
// needed to view it narrowly. It exists to exercise pkg/stablecontainer
// end to end against a schema loaded from YAML.
//
// Usage:
//
//	stablessz-inspect [flags]
//
// Flags:
//
//	--base      StableContainer name to encode/decode (default: Shape)
//	--profile   Profile name to view the same backing through
//	            (default: RectangleProfile)
//	--hex       Decode this hex blob instead of encoding a demo value
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "embed"

	applog "github.com/eth2030/sszstable/pkg/log"
	"github.com/eth2030/sszstable/pkg/sszview"
	"github.com/eth2030/sszstable/pkg/stablecontainer"
	"github.com/eth2030/sszstable/pkg/stableschema"
)

//go:embed testdata/demo_schema.yaml
var demoSchemaYAML []byte

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in
// isolation.
func run(args []string) int {
	// Bound to the current os.Stderr at call time rather than the
	// package-level default logger, so tests can redirect it.
	logger := applog.NewWithHandler(slog.NewJSONHandler(os.Stderr, nil)).Module("cli")

	fs := newFlagSet("stablessz-inspect")
	baseName := fs.String("base", "Shape", "stable container name to encode/decode")
	profileName := fs.String("profile", "RectangleProfile", "profile name to view the same backing through")
	hexIn := fs.String("hex", "", "decode this hex blob instead of encoding a demo value")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	set, err := stableschema.Load(demoSchemaYAML)
	if err != nil {
		logger.Error("failed to load schema", "err", err)
		return 1
	}
	logger.Debug("schema loaded", "stable_containers", len(set.StableContainers), "profiles", len(set.Profiles))

	base, ok := set.StableContainers[*baseName]
	if !ok {
		logger.Error("unknown stable container", "name", *baseName)
		return 1
	}
	profile, ok := set.Profiles[*profileName]
	if !ok {
		logger.Error("unknown profile", "name", *profileName)
		return 1
	}

	var wire []byte
	if *hexIn != "" {
		wire, err = hex.DecodeString(*hexIn)
		if err != nil {
			logger.Error("bad --hex input", "err", err)
			return 1
		}
	} else {
		label, _ := sszview.NewByteList([]byte("north wing"), 32)
		demo, err := stablecontainer.NewStableContainer(base, map[string]sszview.View{
			"kind":   sszview.Uint8(1),
			"width":  sszview.Uint16(120),
			"height": sszview.Uint16(80),
			"label":  label,
		})
		if err != nil {
			logger.Error("failed to build demo value", "err", err)
			return 1
		}
		var buf bytes.Buffer
		if _, err := demo.Serialize(&buf); err != nil {
			logger.Error("failed to serialize demo value", "err", err)
			return 1
		}
		wire = buf.Bytes()
		fmt.Printf("encoded %s: %s\n\n", *baseName, hex.EncodeToString(wire))
	}

	decoded, err := stablecontainer.DeserializeStableContainer(base, bytes.NewReader(wire), len(wire))
	if err != nil {
		if errors.Is(err, stablecontainer.ErrUnknownField) || errors.Is(err, stablecontainer.ErrOffset) {
			logger.Warn("failed to decode as stable container", "base", *baseName, "err", err)
		} else {
			logger.Error("failed to decode as stable container", "base", *baseName, "err", err)
		}
		return 1
	}
	fmt.Printf("as %s:\n%s\n\n", *baseName, decoded.DebugString())

	// A Profile over a StableContainer base shares its backing
	// verbatim, so no wire decode is needed to view it
	// through the Profile's narrower field list.
	asProfile := stablecontainer.ProfileFromBacking(profile, decoded.GetBacking())
	fmt.Printf("as %s (same backing, Profile view):\n%s\n\n", *profileName, asProfile.DebugString())

	fmt.Printf("gindex table for %s:\n", *baseName)
	for _, f := range base.Fields() {
		g, err := stablecontainer.KeyToStaticGindex(base, f.Name)
		if err != nil {
			fmt.Printf("  %-10s error: %v\n", f.Name, err)
			continue
		}
		fmt.Printf("  %-10s %d\n", f.Name, g)
	}
	if g, err := stablecontainer.KeyToStaticGindex(base, stablecontainer.ActiveFieldsKey); err == nil {
		fmt.Printf("  %-10s %d\n", stablecontainer.ActiveFieldsKey, g)
	}

	return 0
}
