package nodes

import (
	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/dispatch"
	"github.com/rowanvale/auxpack/hostapi"
	"github.com/rowanvale/auxpack/nodes/wrappers"
	"github.com/rowanvale/auxpack/registry"
)

// Class names the pack registers beyond the discovered units. The AIO and
// label node names live in the dispatch package because the composer emits
// them into graphs.
const (
	SelectorClassName   = "ControlNetPreprocessorSelector"
	ExecuteAllClassName = "ExecuteAllControlNetPreprocessors"
)

// aioNotSupported lists units whose inputs or outputs don't fit the generic
// image in, image out contract, so the AIO combo and the preview grid skip
// them.
var aioNotSupported = []string{
	"InpaintPreprocessor",
	"MeshGraphormer+ImpactDetector-DepthMapPreprocessor",
	"DiffusionEdge_Preprocessor",
	"SavePoseKpsAsJsonFile",
	"FacialPartColoringFromPoseKps",
	"UpperBodyTrackingFromPoseKps",
	"RenderPeopleKps",
	"RenderAnimalKps",
	"Unimatch_OptFlowPreprocessor",
	"MaskOptFlow",
}

// Options tune pack assembly. The zero value builds every compiled-in source
// with the stock exclusions.
type Options struct {
	// Backend is the inference backend model-backed wrappers bind to. When
	// set it is registered before discovery; when nil whatever backend is
	// already registered is used, and without one those sources fail into
	// the diagnostics.
	Backend annotator.Backend

	// DisabledSources skips wrapper sources by name before discovery.
	DisabledSources []string

	// ExcludeFromAIO removes additional units from the AIO combo and the
	// preview grid fan-out.
	ExcludeFromAIO []string
}

// Pack is one assembled node pack: the discovered units, the full class
// table a host executes, what discovery had to say, and the exclusion list
// the generic nodes honor.
type Pack struct {
	Units        *registry.Registry
	Classes      *registry.Registry
	Diags        *registry.Diagnostics
	NotSupported []string
}

// Build discovers the wrapper sources and assembles the class table around
// the given host runtime. Discovery failures never abort the build; they
// land in the pack's diagnostics.
func Build(rt hostapi.Runtime, opts Options) *Pack {
	if opts.Backend != nil {
		annotator.RegisterBackend(opts.Backend)
	}

	sources := wrappers.Sources(rt)
	if len(opts.DisabledSources) > 0 {
		disabled := make(map[string]bool, len(opts.DisabledSources))
		for _, name := range opts.DisabledSources {
			disabled[name] = true
		}
		kept := make([]registry.Source, 0, len(sources))
		for _, src := range sources {
			if !disabled[src.Name()] {
				kept = append(kept, src)
			}
		}
		sources = kept
	}

	units, diags := registry.Discover(sources)

	notSupported := make([]string, 0, len(aioNotSupported)+len(opts.ExcludeFromAIO))
	notSupported = append(notSupported, aioNotSupported...)
	notSupported = append(notSupported, opts.ExcludeFromAIO...)

	classes := registry.New()
	for _, name := range units.Names() {
		class, _ := units.Lookup(name)
		classes.Register(name, class)
	}
	for name, label := range units.DisplayNames() {
		classes.SetDisplayName(name, label)
	}

	classes.Register(dispatch.AIOClassName, aioClass(units, notSupported))
	classes.SetDisplayName(dispatch.AIOClassName, "AIO Aux Preprocessor")
	classes.Register(SelectorClassName, selectorClass(units, rt))
	classes.SetDisplayName(SelectorClassName, "Preprocessor Selector")
	registerEnhance(classes)
	classes.Register(ExecuteAllClassName, executeAllClass(units, rt, notSupported))
	classes.SetDisplayName(ExecuteAllClassName, "Execute All ControlNet Preprocessors")
	classes.Register(dispatch.AddTextClassName, addTextClass())

	return &Pack{
		Units:        units,
		Classes:      classes,
		Diags:        diags,
		NotSupported: notSupported,
	}
}

// AvailableNames lists what the AIO combo offers: the sentinel first, then
// every unit the generic contract supports.
func (p *Pack) AvailableNames() []string {
	return p.Units.AvailableNames(p.NotSupported...)
}

// Routes is the HTTP surface the pack contributes to a host server.
func (p *Pack) Routes() *hostapi.Routes {
	return &hostapi.Routes{Names: p.AvailableNames}
}
