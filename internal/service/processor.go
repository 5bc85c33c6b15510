package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OlegEV/moysklad-autoproduction/internal/domain"
	"github.com/OlegEV/moysklad-autoproduction/internal/event"
	apperrors "github.com/OlegEV/moysklad-autoproduction/pkg/errors"
)

// InventoryAPI is the slice of the MoySklad client the processor needs.
type InventoryAPI interface {
	FindStoreByName(ctx context.Context, name string) (*domain.EntityRef, error)
	ProductStock(ctx context.Context, productID, storeID string) (float64, error)
	Product(ctx context.Context, productID string) (*domain.Product, error)
	FindProcessingPlanByName(ctx context.Context, name string) (*domain.ProcessingPlan, error)
	CreateProcessing(ctx context.Context, req domain.CreateProcessingRequest) (*domain.Processing, error)
	ApplyProcessing(ctx context.Context, processingID string) (*domain.Processing, error)
	Organization(ctx context.Context) (*domain.EntityRef, error)
	Document(ctx context.Context, documentID string) (*domain.TriggerDocument, error)
}

// ProcessorConfig holds the replenishment rules.
type ProcessorConfig struct {
	StoreName         string
	TechCardFieldName string
	MinStockThreshold float64
}

// Processor drives the replenishment workflow for one document at a
// time. The mutex serializes processing so that concurrent webhooks do
// not double-produce for the same stock level.
type Processor struct {
	api    InventoryAPI
	cfg    ProcessorConfig
	events *event.Producer
	logger *slog.Logger

	mu    sync.Mutex
	store *domain.EntityRef
	org   *domain.EntityRef
}

// NewProcessor creates a replenishment processor.
func NewProcessor(api InventoryAPI, cfg ProcessorConfig, events *event.Producer, l *slog.Logger) *Processor {
	return &Processor{
		api:    api,
		cfg:    cfg,
		events: events,
		logger: l,
	}
}

// ResetCaches drops the cached store and organization references. The
// next document re-resolves them from the API.
func (p *Processor) ResetCaches() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = nil
	p.org = nil
}

// ProcessDocument loads the trigger document and runs the replenishment
// workflow over its positions. An error means the document as a whole
// could not be handled; per-position failures come back as results with
// Success set to false.
func (p *Processor) ProcessDocument(ctx context.Context, documentID string) ([]domain.ProcessingResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	results, err := p.processDocumentLocked(ctx, documentID)
	documentDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		documentsProcessed.WithLabelValues("error").Inc()
		return nil, err
	}
	documentsProcessed.WithLabelValues("ok").Inc()
	return results, nil
}

func (p *Processor) processDocumentLocked(ctx context.Context, documentID string) ([]domain.ProcessingResult, error) {
	doc, err := p.api.Document(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}

	p.logger.InfoContext(ctx, "processing document",
		slog.String("document_id", doc.ID),
		slog.String("document_name", doc.Name),
		slog.Bool("applicable", doc.Applicable),
	)

	if !doc.Applicable {
		p.logger.InfoContext(ctx, "document not confirmed, skipping", slog.String("document_name", doc.Name))
		return []domain.ProcessingResult{{
			Success:      true,
			Message:      "document not confirmed, skipping",
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
		}}, nil
	}

	store, err := p.getStore(ctx)
	if err != nil {
		return nil, err
	}

	if doc.Store != nil && doc.Store.EntityID() != store.EntityID() {
		p.logger.InfoContext(ctx, "document is for a different warehouse",
			slog.String("document_store", doc.Store.Name),
			slog.String("monitored_store", store.Name),
		)
		return []domain.ProcessingResult{{
			Success:      true,
			Message:      fmt.Sprintf("document is for a different warehouse (%s)", doc.Store.Name),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
		}}, nil
	}

	if doc.Positions == nil || len(doc.Positions.Rows) == 0 {
		p.logger.WarnContext(ctx, "document has no positions", slog.String("document_name", doc.Name))
		return []domain.ProcessingResult{}, nil
	}

	results := make([]domain.ProcessingResult, 0, len(doc.Positions.Rows))
	for _, position := range doc.Positions.Rows {
		result, err := p.processPosition(ctx, doc, store, position)
		if err != nil {
			p.logger.ErrorContext(ctx, "position processing failed",
				slog.String("product", position.ProductName()),
				slog.String("error", err.Error()),
			)
			result = domain.ProcessingResult{
				Success:      false,
				Message:      fmt.Sprintf("position processing failed: %v", err),
				DocumentID:   doc.ID,
				DocumentName: doc.Name,
				Product: &domain.ProductInfo{
					ID:       position.ProductID(),
					Name:     position.ProductName(),
					Quantity: position.Quantity,
				},
				Error: err.Error(),
			}
		}

		if result.Success {
			positionsProcessed.WithLabelValues("ok").Inc()
		} else {
			positionsProcessed.WithLabelValues("failed").Inc()
			p.events.PublishLineFailed(ctx, event.LineFailed{
				DocumentID:   doc.ID,
				DocumentName: doc.Name,
				ProductID:    resultProductID(result),
				ProductName:  resultProductName(result),
				Reason:       result.Message,
			})
		}
		results = append(results, result)
	}

	return results, nil
}

func (p *Processor) processPosition(ctx context.Context, doc *domain.TriggerDocument, store *domain.EntityRef, position domain.LineItem) (domain.ProcessingResult, error) {
	var zero domain.ProcessingResult

	productID := position.ProductID()
	if productID == "" {
		return zero, fmt.Errorf("cannot extract product ID from assortment href")
	}
	productName := position.ProductName()

	stock, err := p.api.ProductStock(ctx, productID, store.EntityID())
	if err != nil {
		return zero, fmt.Errorf("get stock for %q: %w", productName, err)
	}

	info := &domain.ProductInfo{
		ID:          productID,
		Name:        productName,
		Quantity:    position.Quantity,
		StockBefore: stock,
	}

	p.logger.InfoContext(ctx, "checking stock",
		slog.String("product", productName),
		slog.Float64("stock", stock),
		slog.Float64("threshold", p.cfg.MinStockThreshold),
	)

	if stock >= p.cfg.MinStockThreshold {
		return domain.ProcessingResult{
			Success:      true,
			Message:      fmt.Sprintf("stock is sufficient (%g >= %g)", stock, p.cfg.MinStockThreshold),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Product:      info,
		}, nil
	}

	product, err := p.api.Product(ctx, productID)
	if err != nil {
		return zero, fmt.Errorf("load product %q: %w", productName, err)
	}

	techCardName := p.techCardName(product)
	if techCardName == "" {
		p.logger.WarnContext(ctx, "no tech card on product card", slog.String("product", productName))
		return domain.ProcessingResult{
			Success:      false,
			Message:      "tech card not found on product card",
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Product:      info,
			Error:        "tech card not found",
		}, nil
	}

	plan, err := p.api.FindProcessingPlanByName(ctx, techCardName)
	if err != nil {
		return zero, fmt.Errorf("find tech card %q: %w", techCardName, err)
	}
	if plan == nil {
		return zero, apperrors.NotFound("tech card", techCardName)
	}

	shortfalls, err := CheckAvailability(ctx, plan, position.Quantity, store.EntityID(), p.api.ProductStock)
	if err != nil {
		return zero, err
	}
	if len(shortfalls) > 0 {
		missing := FormatShortfalls(shortfalls)
		p.logger.WarnContext(ctx, "insufficient materials",
			slog.String("product", productName),
			slog.String("missing", missing),
		)
		return domain.ProcessingResult{
			Success:      false,
			Message:      "insufficient materials: " + missing,
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Product:      info,
			Error:        "insufficient materials: " + missing,
		}, nil
	}

	org, err := p.getOrganization(ctx)
	if err != nil {
		return zero, err
	}

	created, err := p.api.CreateProcessing(ctx, domain.CreateProcessingRequest{
		ProcessingPlan: domain.MetaRef{Meta: plan.Meta},
		Store:          store.Ref(),
		ProductsStore:  store.Ref(),
		Organization:   org.Ref(),
		Quantity:       position.Quantity,
		Description:    fmt.Sprintf("created automatically for document %s from %s", doc.Name, doc.Moment),
	})
	if err != nil {
		return zero, fmt.Errorf("create production operation: %w", err)
	}

	applied, err := p.api.ApplyProcessing(ctx, created.ID)
	if err != nil {
		return zero, fmt.Errorf("confirm production operation %s: %w", created.ID, err)
	}

	p.logger.InfoContext(ctx, "production operation created",
		slog.String("processing_id", applied.ID),
		slog.String("processing_name", applied.Name),
		slog.String("product", productName),
		slog.Float64("quantity", position.Quantity),
	)
	processingsCreated.Inc()
	p.events.PublishProcessingCreated(ctx, event.ProcessingCreated{
		DocumentID:     doc.ID,
		DocumentName:   doc.Name,
		ProcessingID:   applied.ID,
		ProcessingName: applied.Name,
		ProductID:      productID,
		ProductName:    productName,
		Quantity:       position.Quantity,
	})

	return domain.ProcessingResult{
		Success:        true,
		Message:        fmt.Sprintf("created production operation for %g x %q", position.Quantity, productName),
		DocumentID:     doc.ID,
		DocumentName:   doc.Name,
		ProcessingID:   applied.ID,
		ProcessingName: applied.Name,
		Product:        info,
	}, nil
}

func (p *Processor) techCardName(product *domain.Product) string {
	attr := product.AttributeByName(p.cfg.TechCardFieldName)
	if attr == nil {
		return ""
	}
	return attr.AsString()
}

func (p *Processor) getStore(ctx context.Context) (*domain.EntityRef, error) {
	if p.store != nil {
		return p.store, nil
	}

	store, err := p.api.FindStoreByName(ctx, p.cfg.StoreName)
	if err != nil {
		return nil, fmt.Errorf("find store %q: %w", p.cfg.StoreName, err)
	}
	if store == nil {
		return nil, apperrors.NotFound("store", p.cfg.StoreName)
	}

	p.logger.InfoContext(ctx, "resolved monitored store",
		slog.String("store", store.Name),
		slog.String("store_id", store.EntityID()),
	)
	p.store = store
	return store, nil
}

func (p *Processor) getOrganization(ctx context.Context) (*domain.EntityRef, error) {
	if p.org != nil {
		return p.org, nil
	}

	org, err := p.api.Organization(ctx)
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	if org == nil {
		return nil, fmt.Errorf("no organization found")
	}

	p.logger.InfoContext(ctx, "resolved organization",
		slog.String("organization", org.Name),
		slog.String("organization_id", org.EntityID()),
	)
	p.org = org
	return org, nil
}

func resultProductID(r domain.ProcessingResult) string {
	if r.Product == nil {
		return ""
	}
	return r.Product.ID
}

func resultProductName(r domain.ProcessingResult) string {
	if r.Product == nil {
		return ""
	}
	return r.Product.Name
}
