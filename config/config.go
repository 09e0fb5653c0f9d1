// Package config holds the engine's static, load-time options (spec §1:
// configuration loading itself is explicitly out of scope; this package is
// only the struct surface later code is wired against).
package config

import (
	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/dispatch"
	"github.com/systerel/opcua-addrspace-core/internal/metrics"
	"github.com/systerel/opcua-addrspace-core/internal/obslog"
	"github.com/systerel/opcua-addrspace-core/mistore"
	"github.com/systerel/opcua-addrspace-core/nodeset"
)

// EngineOptions bundles the address-space-engine options a host process
// decides once at startup and never reloads (spec §4.2/§4.3).
type EngineOptions struct {
	// AreNodesReleasable allows AddNode/DeleteNode to mutate the address
	// space graph after the static nodeset has been loaded.
	AreNodesReleasable bool
	// AreReadOnlyNodes restricts WriteValue to the Value component only;
	// status and source-timestamp writes are rejected.
	AreReadOnlyNodes bool
	// SupportedLocales gates which LocalizedText locales WriteValue accepts
	// (nil/empty accepts all).
	SupportedLocales []string
	// ServerNodeID identifies the Server object, used as the SourceNode of
	// synthetic queue-overflow events.
	ServerNodeID *ua.NodeID
	// DispatchBufferLen sizes the dispatcher's async batch channel; 0 makes
	// Dispatch synchronous (Submit calls Dispatch directly).
	DispatchBufferLen int
	// RecursionLimit bounds every graph walk the engine performs (subtype
	// walk, TranslateBrowsePath, DeleteNode recursion — spec §9 "Design
	// Notes"). 0 falls back to nodeset.DefaultRecursionLimit.
	RecursionLimit int
	// DeleteRecursesOrganizes additionally follows Organizes-or-subtype
	// references when DeleteNode walks children to delete (spec §4.3
	// DeleteNode step 2's build-time toggle; off by default).
	DeleteRecursesOrganizes bool
}

// DefaultEngineOptions returns the engine's defaults: a releasable,
// read-write address space accepting every locale, synchronous dispatch,
// the standard recursion bound, and DeleteNode recursing HasChild only.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		AreNodesReleasable: true,
		ServerNodeID:       ua.NewNumericNodeID(0, 2253), // Server object, Part 5 Annex A
		RecursionLimit:     nodeset.DefaultRecursionLimit,
	}
}

// Engine is the fully wired set of components an EngineOptions produces:
// one nodeset.Store, one mistore.Store, and the dispatch.Dispatcher tying
// them together. A host process embeds Engine and builds access.Access
// handles against Store per service invocation.
type Engine struct {
	Store      *nodeset.Store
	MIStore    *mistore.Store
	Dispatcher *dispatch.Dispatcher
	Metrics    *metrics.Collectors

	supportedLocales []string
}

// NewEngine wires a fresh Engine from opts: the nodeset/mistore/dispatcher
// triple, with obslog as the shared logger and a fresh metrics.Collectors
// feeding both mistore's queue-depth/overflow gauges and the dispatcher's
// dispatched/dropped counters.
func NewEngine(opts EngineOptions) *Engine {
	store := nodeset.NewStore()
	store.AreNodesReleasable = opts.AreNodesReleasable
	store.AreReadOnlyNodes = opts.AreReadOnlyNodes
	store.DeleteRecursesOrganizes = opts.DeleteRecursesOrganizes
	if opts.RecursionLimit > 0 {
		store.RecursionLimit = opts.RecursionLimit
	}

	collectors := metrics.New()

	miStore := mistore.NewStore()
	miStore.Metrics = collectors

	disp := dispatch.New(store, miStore, opts.ServerNodeID, opts.DispatchBufferLen)
	disp.Metrics = collectors
	disp.Logger = obslog.L()

	return &Engine{Store: store, MIStore: miStore, Dispatcher: disp, Metrics: collectors, supportedLocales: opts.SupportedLocales}
}

// NewAccess returns an Access handle over the Engine's Store, recording
// operations for a later Submit to Dispatcher.
func (e *Engine) NewAccess() *access.Access {
	a := access.New(e.Store, true)
	a.SupportedLocales = e.supportedLocales
	a.Logger = obslog.L()
	return a
}
