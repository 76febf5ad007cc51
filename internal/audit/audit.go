// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/features"
	"github.com/noahsarkproj/shopmanual/internal/scoring"
	"github.com/noahsarkproj/shopmanual/internal/structure"
	"github.com/noahsarkproj/shopmanual/internal/structure/parsers"
	"github.com/noahsarkproj/shopmanual/internal/targets"
)

// Labels written into catalogue entries.
const (
	DataSourcePrefix         = "PDB:"
	StructuralValidationPath = "Structural Analysis"
	DefaultInorganicCore     = "None"
	DefaultFunction          = "Unknown"
	QuantumPrimitive         = "Quantum Sensor / Qubit Candidate"
	ProposedQuantumFunction  = "Magnetoreception / Coherent Energy Transport"
	QuantumValidationPath    = "2D Spectroscopy / Pulsed EPR"
)

const (
	featurePresentScore = 3
	featureAbsentScore  = 1
)

// Fetcher retrieves raw PDB text for an accession id.
type Fetcher interface {
	FetchPDB(ctx context.Context, pdbID string) (string, error)
}

// BatchHook is called after every completed batch with the entries it produced.
type BatchHook func(ctx context.Context, batch int, entries []catalogue.Entry) error

// Auditor fetches, parses and scores structures and appends the results to
// the catalogue.
type Auditor struct {
	fetcher         Fetcher
	manual          *catalogue.Catalogue
	registry        *structure.Registry
	baselineScore   int
	quantumEvidence int
	batchHook       BatchHook
	logger          *zap.Logger
}

type Option func(*Auditor)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// WithRegistry replaces the default parser registry.
func WithRegistry(r *structure.Registry) Option {
	return func(a *Auditor) {
		a.registry = r
	}
}

// WithBaselineScore sets the uniform category score used for GEPS.
func WithBaselineScore(v int) Option {
	return func(a *Auditor) {
		a.baselineScore = v
	}
}

func WithQuantumEvidence(v int) Option {
	return func(a *Auditor) {
		a.quantumEvidence = v
	}
}

func WithBatchHook(hook BatchHook) Option {
	return func(a *Auditor) {
		a.batchHook = hook
	}
}

// DefaultRegistry returns the parsers used for fetched structures.
func DefaultRegistry() *structure.Registry {
	return structure.NewRegistry(
		parsers.NewPDBParser(),
		parsers.NewDocumentParser(),
	)
}

func New(fetcher Fetcher, manual *catalogue.Catalogue, opts ...Option) (*Auditor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if manual == nil {
		return nil, fmt.Errorf("catalogue is required")
	}

	a := &Auditor{
		fetcher:         fetcher,
		manual:          manual,
		registry:        DefaultRegistry(),
		baselineScore:   scoring.DefaultBaselineCategoryScore,
		quantumEvidence: scoring.DefaultQuantumEvidence,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Catalogue returns the catalogue entries are appended to.
func (a *Auditor) Catalogue() *catalogue.Catalogue {
	return a.manual
}

func (a *Auditor) fetchAndParse(ctx context.Context, pdbID string) (structure.ParsedStructure, error) {
	text, err := a.fetcher.FetchPDB(ctx, pdbID)
	if err != nil {
		return structure.ParsedStructure{}, err
	}
	parsed, err := a.registry.Parse(ctx, structure.StructureSource{
		Content: []byte(text),
		Format:  "pdb",
		ID:      pdbID,
	})
	if err != nil {
		return structure.ParsedStructure{}, fmt.Errorf("parse %s: %w", pdbID, err)
	}
	a.logger.Debug("Parsed structure",
		zap.String("pdb", pdbID),
		zap.String("classification", parsed.Classification()),
		zap.Int("atoms", len(parsed.Atoms)),
		zap.Int("dropped", len(parsed.Diagnostics)))
	return parsed, nil
}

// AuditStructural audits one target and appends a StructuralEntry.
func (a *Auditor) AuditStructural(ctx context.Context, target targets.Target) (catalogue.StructuralEntry, error) {
	parsed, err := a.fetchAndParse(ctx, target.PDB)
	if err != nil {
		return catalogue.StructuralEntry{}, fmt.Errorf("audit %s: %w", target.PartID, err)
	}

	entry := catalogue.StructuralEntry{
		ID:                     target.PartID,
		BiologicalStructure:    target.Name,
		InorganicCore:          orDefault(target.Inorganic, DefaultInorganicCore),
		PrimaryFunction:        orDefault(target.PrimaryFunction, DefaultFunction),
		SecondaryFunction:      orDefault(target.SecondaryFunction, DefaultFunction),
		GEPSScore:              scoring.Uniform(a.baselineScore).Score(),
		FailureModeEngineering: target.FailureModeEngineering,
		FailureModeBiological:  target.FailureModeBiological,
		DataSources:            DataSourcePrefix + target.PDB,
		ValidationPath:         StructuralValidationPath,
		Atoms:                  parsed.Atoms,
	}
	a.manual.Add(entry)

	a.logger.Info("Audited structure",
		zap.String("part_id", entry.ID),
		zap.String("pdb", target.PDB),
		zap.Float64("geps", entry.GEPSScore))
	return entry, nil
}

// QuantumInputs derives the Q-GEPS inputs from structure features.
func QuantumInputs(f features.Features, evidence int) scoring.QuantumInputs {
	return scoring.QuantumInputs{
		Coherence: presence(f.AromaticRings),
		Advantage: presence(f.RadicalPairs),
		Shielding: presence(f.MetalClusters),
		Evidence:  evidence,
	}
}

// AuditQuantumCandidate audits one structure as a quantum candidate and
// appends a QuantumEntry.
func (a *Auditor) AuditQuantumCandidate(ctx context.Context, pdbID, partID, name string) (catalogue.QuantumEntry, error) {
	parsed, err := a.fetchAndParse(ctx, pdbID)
	if err != nil {
		return catalogue.QuantumEntry{}, fmt.Errorf("quantum audit %s: %w", partID, err)
	}

	found := features.Extract(parsed)
	inputs := QuantumInputs(found, a.quantumEvidence)

	entry := catalogue.QuantumEntry{
		ID:                      partID,
		BiologicalStructure:     name,
		QuantumPrimitive:        QuantumPrimitive,
		QGEPSScore:              inputs.Score(),
		DecoherenceSource:       found.Decoherence,
		ProposedQuantumFunction: ProposedQuantumFunction,
		QuantumValidationPath:   QuantumValidationPath,
		DataSources:             DataSourcePrefix + pdbID,
	}
	a.manual.Add(entry)

	a.logger.Info("Audited quantum candidate",
		zap.String("part_id", partID),
		zap.String("pdb", pdbID),
		zap.Any("inputs", inputs),
		zap.Float64("q_geps", entry.QGEPSScore))
	return entry, nil
}

// RunBatch audits the targets in order and stops at the first failure.
func (a *Auditor) RunBatch(ctx context.Context, batch []targets.Target) ([]catalogue.Entry, error) {
	results := make([]catalogue.Entry, 0, len(batch))
	for _, t := range batch {
		entry, err := a.AuditStructural(ctx, t)
		if err != nil {
			return results, err
		}
		results = append(results, entry)
	}
	return results, nil
}

// AutoRun audits all targets sequentially in chunks of batchSize; the last
// chunk may be smaller. The first failure aborts the run. Entries appended
// before the failure stay in the catalogue.
func (a *Auditor) AutoRun(ctx context.Context, list []targets.Target, batchSize int) ([]catalogue.Entry, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	logger := a.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Starting audit run", zap.Int("targets", len(list)), zap.Int("batch_size", batchSize))

	var all []catalogue.Entry
	for start, n := 0, 1; start < len(list); start, n = start+batchSize, n+1 {
		end := min(start+batchSize, len(list))
		results, err := a.RunBatch(ctx, list[start:end])
		all = append(all, results...)
		if err != nil {
			logger.Error("Audit run aborted", zap.Int("batch", n), zap.Error(err))
			return all, err
		}
		logger.Info(fmt.Sprintf("Audited batch of %d structures", len(results)), zap.Int("batch", n))

		if a.batchHook != nil {
			if err := a.batchHook(ctx, n, results); err != nil {
				return all, fmt.Errorf("batch %d hook: %w", n, err)
			}
		}
	}
	return all, nil
}

func presence(count int) int {
	if count > 0 {
		return featurePresentScore
	}
	return featureAbsentScore
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
