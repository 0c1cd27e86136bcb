package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/fieldtel/number-provisioning-backend/internal/domain/errors"
	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
	"github.com/fieldtel/number-provisioning-backend/internal/domain/values"
)

// ValidRecord pairs an accepted input row with its normalized forms.
type ValidRecord struct {
	Record     numbering.RawRecord       `json:"record"`
	E164       string                    `json:"e164"`
	Normalized numbering.NormalizedPhone `json:"normalized"`
	// Degraded marks rows whose decomposition fell back to the
	// whole-national-number form.
	Degraded bool `json:"degraded,omitempty"`
}

// RecordError pairs a rejected input row with its rejection reason.
type RecordError struct {
	Index  int                 `json:"index"`
	Record numbering.RawRecord `json:"record"`
	Reason numbering.ErrorKind `json:"reason"`
}

// ValidationReport accumulates per-record outcomes; no record failure aborts
// the batch.
type ValidationReport struct {
	Valid   []ValidRecord  `json:"valid"`
	Errors  []RecordError  `json:"errors"`
	Summary map[string]int `json:"summary"`
}

// GenerationResult is the outcome of one generation batch. Produced counts
// may fall short of requested ones when a plan's prefix space exhausts;
// Shortfall reports the gap per country.
type GenerationResult struct {
	BatchID   uuid.UUID                   `json:"batch_id"`
	Numbers   []numbering.GeneratedNumber `json:"numbers"`
	Summary   map[string]int              `json:"summary"`
	Shortfall map[string]int              `json:"shortfall,omitempty"`
}

// Service runs the numbering engine behind a single mutex-guarded uniqueness
// scope. The repository and store are optional: without them the scope is
// the process lifetime; with them it extends across restarts and instances.
type Service struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	gen     *numbering.Generator
	metrics MetricsCollector
	repo    NumberRepository
	store   UniquenessStore

	// Concurrent generation requests share one set pair; the mutex keeps
	// the check-then-insert sequence atomic.
	mu     sync.Mutex
	sets   *numbering.UniquenessSets
	seeded bool
}

// NewService wires the provisioning service. repo and store may be nil;
// metrics may be nil to discard measurements.
func NewService(
	logger *slog.Logger,
	gen *numbering.Generator,
	metrics MetricsCollector,
	repo NumberRepository,
	store UniquenessStore,
) *Service {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Service{
		logger:  logger,
		tracer:  otel.Tracer("provisioning"),
		gen:     gen,
		metrics: metrics,
		repo:    repo,
		store:   store,
		sets:    numbering.NewUniquenessSets(),
	}
}

// ValidateRecords validates every record against its declared country,
// decomposing the accepted ones. Failures accumulate alongside successes.
func (s *Service) ValidateRecords(ctx context.Context, records []numbering.RawRecord) *ValidationReport {
	_, span := s.tracer.Start(ctx, "provisioning.validate_records",
		trace.WithAttributes(attribute.Int("records", len(records))))
	defer span.End()

	report := &ValidationReport{Summary: make(map[string]int)}
	for i, rec := range records {
		country := numbering.Canonical(rec.Country)
		phone, err := values.NewPhoneNumber(rec.Phone, rec.Country)
		if err != nil {
			var verr values.PhoneValidationError
			errors.As(err, &verr)
			s.metrics.RecordValidation(country, string(verr.Reason))
			report.Errors = append(report.Errors, RecordError{Index: i, Record: rec, Reason: verr.Reason})
			continue
		}
		s.metrics.RecordValidation(country, "valid")

		np := phone.Normalized()
		report.Valid = append(report.Valid, ValidRecord{
			Record:     rec,
			E164:       phone.E164(),
			Normalized: np,
			Degraded:   numbering.IsDegraded(np, rec.Country),
		})
		report.Summary[phone.Country()]++
	}

	span.SetAttributes(
		attribute.Int("valid", len(report.Valid)),
		attribute.Int("rejected", len(report.Errors)),
	)
	return report
}

// GenerateNumbers synthesizes numbers per country against the service-scoped
// uniqueness sets, persisting accepted numbers when a repository is
// configured. Exhausted plans shorten the result instead of failing.
func (s *Service) GenerateNumbers(ctx context.Context, counts map[string]int) (*GenerationResult, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.generate_numbers",
		trace.WithAttributes(attribute.Int("countries", len(counts))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	numbers := s.gen.GenerateBatchWith(counts, s.sets)

	result := &GenerationResult{
		BatchID: uuid.New(),
		Numbers: numbers,
		Summary: make(map[string]int, len(counts)),
	}
	for _, gen := range numbers {
		result.Summary[gen.Country]++
	}
	for country, requested := range counts {
		canon := numbering.Canonical(country)
		produced := result.Summary[canon]
		s.metrics.RecordGeneration(canon, requested, produced)
		if produced < requested {
			if result.Shortfall == nil {
				result.Shortfall = make(map[string]int)
			}
			result.Shortfall[canon] = requested - produced
			s.logger.WarnContext(ctx, "generation shortfall",
				"country", canon, "requested", requested, "produced", produced)
		}
	}

	if err := s.persist(ctx, result.BatchID, numbers); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "generated numbers",
		"batch_id", result.BatchID, "count", len(numbers))
	return result, nil
}

// GroupContacts assigns contacts to generated numbers by prefix, then dial
// code. Unmatched contacts are dropped from the groups and reported in the
// diagnostics.
func (s *Service) GroupContacts(ctx context.Context, contacts []numbering.RawRecord, pool []numbering.GeneratedNumber) ([]numbering.Group, numbering.GroupDiagnostics) {
	_, span := s.tracer.Start(ctx, "provisioning.group_contacts",
		trace.WithAttributes(
			attribute.Int("contacts", len(contacts)),
			attribute.Int("pool", len(pool)),
		))
	defer span.End()

	groups, diag := numbering.GroupByPrefix(contacts, pool)
	s.metrics.RecordGrouping(len(groups), len(diag.DroppedContacts))
	if len(diag.DroppedContacts) > 0 {
		s.logger.WarnContext(ctx, "contacts matched no generated number",
			"dropped", len(diag.DroppedContacts))
	}
	return groups, diag
}

// ProvisionedSummary reports how many numbers each country has provisioned,
// read from persistence. Without a repository there is nothing to count.
func (s *Service) ProvisionedSummary(ctx context.Context) (map[string]int, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.provisioned_summary")
	defer span.End()

	if s.repo == nil {
		return nil, apperrors.NewBusinessError("PERSISTENCE_DISABLED", "no number repository configured")
	}
	counts, err := s.repo.CountByCountry(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("counting provisioned numbers").WithCause(err)
	}
	return counts, nil
}

// ensureSeeded loads previously provisioned numbers into the service's sets
// once, before the first generation. Callers must hold s.mu.
func (s *Service) ensureSeeded(ctx context.Context) error {
	if s.seeded {
		return nil
	}
	if s.repo != nil {
		fulls, prefixes, err := s.repo.LoadUsed(ctx)
		if err != nil {
			return apperrors.NewInternalError("loading used numbers").WithCause(err)
		}
		for _, f := range fulls {
			s.sets.AddFull(f)
		}
		for _, p := range prefixes {
			s.sets.AddPrefix(p)
		}
	}
	if s.store != nil {
		if err := s.store.Seed(ctx, s.sets); err != nil {
			return apperrors.NewInternalError("seeding uniqueness store").WithCause(err)
		}
	}
	s.seeded = true
	return nil
}

func (s *Service) persist(ctx context.Context, batchID uuid.UUID, numbers []numbering.GeneratedNumber) error {
	if len(numbers) == 0 {
		return nil
	}
	if s.repo != nil {
		if err := s.repo.StoreGenerated(ctx, batchID, numbers); err != nil {
			return apperrors.NewInternalError("storing generated numbers").WithCause(err)
		}
	}
	if s.store != nil {
		fulls := make([]string, len(numbers))
		prefixes := make([]string, len(numbers))
		for i, gen := range numbers {
			fulls[i] = gen.E164
			prefixes[i] = numbering.Prefix(gen.E164, gen.Country)
		}
		if err := s.store.Record(ctx, fulls, prefixes); err != nil {
			return apperrors.NewInternalError("recording numbers in uniqueness store").WithCause(err)
		}
	}
	return nil
}
