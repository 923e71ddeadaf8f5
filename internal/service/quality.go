package service

import (
	"context"
	"fmt"
	"time"

	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

// QualityCheckView is a quality check with its operator's name.
type QualityCheckView struct {
	models.QualityCheck
	OperatorName *string `json:"operator_name"`
}

// ScrapEntryView is a scrap entry with its operator's name.
type ScrapEntryView struct {
	models.ScrapEntry
	OperatorName *string `json:"operator_name"`
}

// CreateQualityCheckInput is the body of POST /quality/checks. The three
// test verdicts default to passed.
type CreateQualityCheckInput struct {
	MachineID              string       `json:"machine_id" binding:"required,min=1,max=20"`
	Shift                  domain.Shift `json:"shift" binding:"required"`
	OperatorName           *string      `json:"operator_name" binding:"omitempty,max=100"`
	Diameter               *float64     `json:"diameter" binding:"omitempty,gte=0"`
	DiameterTolerance      *float64     `json:"diameter_tolerance"`
	Thickness              *float64     `json:"thickness" binding:"omitempty,gte=0"`
	Concentricity          *float64     `json:"concentricity"`
	SparkTestPassed        *bool        `json:"spark_test_passed"`
	SparkTestVoltage       *float64     `json:"spark_test_voltage"`
	TensileTestPassed      *bool        `json:"tensile_test_passed"`
	TensileStrength        *float64     `json:"tensile_strength"`
	Elongation             *float64     `json:"elongation"`
	VisualInspectionPassed *bool        `json:"visual_inspection_passed"`
	DefectType             *string      `json:"defect_type" binding:"omitempty,max=100"`
	DefectLocation         *string      `json:"defect_location" binding:"omitempty,max=100"`
	Notes                  *string      `json:"notes"`
	Timestamp              *time.Time   `json:"timestamp"`
}

// CreateScrapInput is the body of POST /quality/scrap.
type CreateScrapInput struct {
	MachineID              string           `json:"machine_id" binding:"required,min=1,max=20"`
	Shift                  domain.Shift     `json:"shift" binding:"required"`
	OperatorName           *string          `json:"operator_name" binding:"omitempty,max=100"`
	ScrapType              domain.ScrapType `json:"scrap_type" binding:"required"`
	ScrapCode              *string          `json:"scrap_code" binding:"omitempty,max=20"`
	WeightKg               float64          `json:"weight_kg" binding:"required,gt=0"`
	CopperContentPercent   *float64         `json:"copper_content_percent" binding:"omitempty,gte=0,lte=100"`
	AluminumContentPercent *float64         `json:"aluminum_content_percent" binding:"omitempty,gte=0,lte=100"`
	Reason                 *string          `json:"reason" binding:"omitempty,max=500"`
	WorkOrderID            *string          `json:"work_order_id" binding:"omitempty,max=20"`
	Notes                  *string          `json:"notes"`
	Timestamp              *time.Time       `json:"timestamp"`
}

// LMEPrice reports the prices scrap is valued at.
type LMEPrice struct {
	CopperUSDPerMT float64   `json:"copper_usd_per_mt"`
	USDToSAR       float64   `json:"usd_to_sar"`
	CopperSARPerMT float64   `json:"copper_sar_per_mt"`
	Timestamp      time.Time `json:"timestamp"`
}

// QualityService serves quality checks, scrap entries and the scrap-code
// catalog.
type QualityService struct {
	auditor
	repos   *repository.Repositories
	pricing config.PricingConfig
	clock   Clock
}

func NewQualityService(repos *repository.Repositories, pricing config.PricingConfig, clock Clock) *QualityService {
	if pricing.USDToSAR <= 0 {
		pricing.USDToSAR = domain.USDToSAR
	}
	return &QualityService{repos: repos, pricing: pricing, clock: clock}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (s *QualityService) WithAuditLogger(al *audit.Logger) *QualityService {
	s.log = al
	return s
}

func (s *QualityService) ListChecks(ctx context.Context, f repository.LogFilter) ([]*QualityCheckView, error) {
	rows, err := s.repos.Facts.ListQuality(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list quality checks: %w", err)
	}
	out := make([]*QualityCheckView, 0, len(rows))
	for _, row := range rows {
		out = append(out, &QualityCheckView{QualityCheck: row, OperatorName: nameOf(row.Operator)})
	}
	return out, nil
}

func (s *QualityService) GetCheck(ctx context.Context, id uint) (*QualityCheckView, error) {
	qc, err := s.repos.Facts.GetQuality(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apperrors.ErrQualityCheckNotFound(id))
	}
	return &QualityCheckView{QualityCheck: *qc, OperatorName: nameOf(qc.Operator)}, nil
}

// CreateCheck stores a check whose overall verdict is the AND of its
// spark, tensile and visual tests.
func (s *QualityService) CreateCheck(ctx context.Context, in CreateQualityCheckInput) (*QualityCheckView, error) {
	if err := parseEnum("shift", in.Shift); err != nil {
		return nil, err
	}

	spark := boolOr(in.SparkTestPassed, true)
	tensile := boolOr(in.TensileTestPassed, true)
	visual := boolOr(in.VisualInspectionPassed, true)
	qc := &models.QualityCheck{
		MachineID:              in.MachineID,
		Shift:                  in.Shift,
		Timestamp:              timestampOr(in.Timestamp, s.clock.now()),
		Diameter:               in.Diameter,
		DiameterTolerance:      in.DiameterTolerance,
		Thickness:              in.Thickness,
		Concentricity:          in.Concentricity,
		SparkTestPassed:        spark,
		SparkTestVoltage:       in.SparkTestVoltage,
		TensileTestPassed:      tensile,
		TensileStrength:        in.TensileStrength,
		Elongation:             in.Elongation,
		VisualInspectionPassed: visual,
		DefectType:             in.DefectType,
		DefectLocation:         in.DefectLocation,
		Passed:                 domain.CheckPassed(spark, tensile, visual),
		Notes:                  in.Notes,
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		if err := requireMachine(ctx, s.repos.Machines, in.MachineID); err != nil {
			return err
		}
		operatorID, err := ResolveOperator(ctx, s.repos.Employees, in.OperatorName)
		if err != nil {
			return fmt.Errorf("resolve operator: %w", err)
		}
		qc.OperatorID = operatorID
		if err := s.repos.Facts.CreateQuality(ctx, qc); err != nil {
			return fmt.Errorf("create quality check: %w", err)
		}
		return s.record(ctx, "quality_check.created", "quality_check", fmt.Sprint(qc.ID), map[string]interface{}{
			"machine_id": qc.MachineID,
			"passed":     qc.Passed,
		})
	})
	if err != nil {
		return nil, err
	}
	return &QualityCheckView{QualityCheck: *qc, OperatorName: in.OperatorName}, nil
}

// CheckSummary reduces the quality checks in the window.
func (s *QualityService) CheckSummary(ctx context.Context, q WindowQuery) (domain.QualitySummary, error) {
	rows, err := s.repos.Facts.QualityIn(ctx, q.resolve(s.clock.now()), "")
	if err != nil {
		return domain.QualitySummary{}, fmt.Errorf("read quality checks: %w", err)
	}
	return domain.SummarizeQuality(qualityFacts(rows)), nil
}

func (s *QualityService) ListScrap(ctx context.Context, f repository.LogFilter) ([]*ScrapEntryView, error) {
	rows, err := s.repos.Facts.ListScrap(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list scrap entries: %w", err)
	}
	out := make([]*ScrapEntryView, 0, len(rows))
	for _, row := range rows {
		out = append(out, &ScrapEntryView{ScrapEntry: row, OperatorName: nameOf(row.Operator)})
	}
	return out, nil
}

func (s *QualityService) GetScrap(ctx context.Context, id uint) (*ScrapEntryView, error) {
	e, err := s.repos.Facts.GetScrap(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apperrors.ErrScrapNotFound(id))
	}
	return &ScrapEntryView{ScrapEntry: *e, OperatorName: nameOf(e.Operator)}, nil
}

// CreateScrap values the entry at the configured LME copper price and
// stores the valuation with it. A known scrap code supplies the copper
// content when the caller omits it.
func (s *QualityService) CreateScrap(ctx context.Context, in CreateScrapInput) (*ScrapEntryView, error) {
	if err := parseEnum("shift", in.Shift); err != nil {
		return nil, err
	}
	if err := parseEnum("scrap_type", in.ScrapType); err != nil {
		return nil, err
	}

	copper := floatOr(in.CopperContentPercent, 0)
	if in.CopperContentPercent == nil && in.ScrapCode != nil {
		if code, ok := domain.LookupScrapCode(*in.ScrapCode); ok {
			copper = code.CopperPercent
		}
	}
	v := domain.ValueScrap(in.WeightKg, copper, s.pricing.LMECopperUSDPerMT, s.pricing.USDToSAR)

	entry := &models.ScrapEntry{
		MachineID:              in.MachineID,
		Shift:                  in.Shift,
		Timestamp:              timestampOr(in.Timestamp, s.clock.now()),
		ScrapType:              in.ScrapType,
		ScrapCode:              in.ScrapCode,
		WeightKg:               in.WeightKg,
		CopperContentPercent:   copper,
		AluminumContentPercent: floatOr(in.AluminumContentPercent, 0),
		LMEPriceUsed:           &v.LMEPriceUsed,
		FinancialValueUSD:      &v.ValueUSD,
		FinancialValueSAR:      &v.ValueSAR,
		Reason:                 in.Reason,
		WorkOrderID:            in.WorkOrderID,
		Notes:                  in.Notes,
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		if err := requireMachine(ctx, s.repos.Machines, in.MachineID); err != nil {
			return err
		}
		operatorID, err := ResolveOperator(ctx, s.repos.Employees, in.OperatorName)
		if err != nil {
			return fmt.Errorf("resolve operator: %w", err)
		}
		entry.OperatorID = operatorID
		if err := s.repos.Facts.CreateScrap(ctx, entry); err != nil {
			return fmt.Errorf("create scrap entry: %w", err)
		}
		return s.record(ctx, "scrap.logged", "scrap_entry", fmt.Sprint(entry.ID), map[string]interface{}{
			"machine_id": entry.MachineID,
			"weight_kg":  entry.WeightKg,
			"value_usd":  v.ValueUSD,
		})
	})
	if err != nil {
		return nil, err
	}
	return &ScrapEntryView{ScrapEntry: *entry, OperatorName: in.OperatorName}, nil
}

// ScrapSummary reduces the scrap entries in the window.
func (s *QualityService) ScrapSummary(ctx context.Context, q WindowQuery) (domain.ScrapSummary, error) {
	rows, err := s.repos.Facts.ScrapIn(ctx, q.resolve(s.clock.now()), "")
	if err != nil {
		return domain.ScrapSummary{}, fmt.Errorf("read scrap entries: %w", err)
	}
	return domain.SummarizeScrap(scrapFacts(rows)), nil
}

// ScrapCodes returns the scrap-code catalog.
func (s *QualityService) ScrapCodes() ([]domain.ScrapCode, error) {
	codes, err := domain.ScrapCodes()
	if err != nil {
		return nil, fmt.Errorf("load scrap codes: %w", err)
	}
	return codes, nil
}

// LMEPrice reports the configured copper price and exchange rate.
func (s *QualityService) LMEPrice() LMEPrice {
	return LMEPrice{
		CopperUSDPerMT: s.pricing.LMECopperUSDPerMT,
		USDToSAR:       s.pricing.USDToSAR,
		CopperSARPerMT: domain.Round2(s.pricing.LMECopperUSDPerMT * s.pricing.USDToSAR),
		Timestamp:      s.clock.now(),
	}
}

func qualityFacts(rows []models.QualityCheck) []domain.QualityFact {
	facts := make([]domain.QualityFact, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, domain.QualityFact{
			Passed:        r.Passed,
			SparkPassed:   r.SparkTestPassed,
			TensilePassed: r.TensileTestPassed,
			VisualPassed:  r.VisualInspectionPassed,
		})
	}
	return facts
}

func scrapFacts(rows []models.ScrapEntry) []domain.ScrapFact {
	facts := make([]domain.ScrapFact, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, domain.ScrapFact{
			Type:          r.ScrapType,
			WeightKg:      r.WeightKg,
			CopperPercent: r.CopperContentPercent,
			ValueUSD:      floatOr(r.FinancialValueUSD, 0),
			ValueSAR:      floatOr(r.FinancialValueSAR, 0),
		})
	}
	return facts
}
