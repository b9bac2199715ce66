package discovery

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/catalog"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
	"github.com/maatchaa/maatchaa-backend/internal/observability"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// ErrEmptyCatalog is returned by RunCycle when there are no products.
var ErrEmptyCatalog = errors.New("no products in catalog")

const (
	modeContinuous = "continuous"
	modeTriggered  = "triggered"
)

// Deps are the collaborators of a Worker. Events and Metrics may be nil.
type Deps struct {
	Source     CandidateSource
	Classifier Classifier
	Keywords   *KeywordGenerator
	Products   ProductStore
	Videos     VideoStore
	Matches    MatchStore
	Vectors    VectorIndex
	Embedder   Embedder
	Events     EventPublisher
	Metrics    *observability.Metrics
}

// Worker runs discovery passes: one product, one keyword, one video at a
// time, with fixed pacing between each.
type Worker struct {
	log  *logger.Logger
	cfg  Config
	deps Deps
	now  func() time.Time
}

func NewWorker(baseLog *logger.Logger, cfg Config, deps Deps) (*Worker, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("discovery: candidate source is required")
	case deps.Classifier == nil:
		return nil, fmt.Errorf("discovery: classifier is required")
	case deps.Products == nil || deps.Videos == nil || deps.Matches == nil:
		return nil, fmt.Errorf("discovery: product, video and match stores are required")
	case deps.Vectors == nil || deps.Embedder == nil:
		return nil, fmt.Errorf("discovery: vector index and embedder are required")
	}
	log := baseLog.With("component", "DiscoveryWorker")
	if deps.Keywords == nil {
		deps.Keywords = NewKeywordGenerator(log, nil)
	}
	return &Worker{log: log, cfg: cfg.normalized(), deps: deps, now: time.Now}, nil
}

func (w *Worker) Config() Config { return w.cfg }

// Run loops until ctx is cancelled. A cycle that fails or panics is logged
// and followed by RecoveryDelay instead of CycleInterval.
func (w *Worker) Run(ctx context.Context) error {
	ctx = ctxutil.Default(ctx)
	state := &LoopState{}
	w.log.Info("Creator discovery worker started",
		"cycle_interval", w.cfg.CycleInterval.String(),
		"products_per_cycle", w.cfg.ProductsPerCycle,
		"keywords_per_product", w.cfg.KeywordsPerProduct,
		"videos_per_keyword", w.cfg.VideosPerKeyword,
		"min_score", w.cfg.MinScore,
		"min_views", w.cfg.MinViews,
	)
	for {
		if ctx.Err() != nil {
			w.log.Info("Creator discovery worker stopped", "cycles", state.Cycle)
			return nil
		}
		delay := w.runCycleSafe(ctx, state)
		if err := ctxutil.Sleep(ctx, delay); err != nil {
			w.log.Info("Creator discovery worker stopped", "cycles", state.Cycle)
			return nil
		}
	}
}

// runCycleSafe runs one cycle and returns how long to sleep before the next.
func (w *Worker) runCycleSafe(ctx context.Context, state *LoopState) (delay time.Duration) {
	start := w.now()
	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			state.ConsecutiveFailures++
			w.log.Error("Discovery cycle panic",
				"cycle", state.Cycle,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			status = "panic"
			delay = w.cfg.RecoveryDelay
		}
		w.deps.Metrics.ObserveCycle(modeContinuous, status, w.now().Sub(start))
	}()

	stats, err := w.RunCycle(ctx, state)
	switch {
	case errors.Is(err, ErrEmptyCatalog):
		status = "empty"
		w.log.Warn("No products found, waiting for catalog sync", "sleep", w.cfg.EmptyCatalogDelay.String())
		return w.cfg.EmptyCatalogDelay
	case err != nil && ctx.Err() != nil:
		status = "cancelled"
		return 0
	case err != nil:
		status = "error"
		state.ConsecutiveFailures++
		w.log.Error("Discovery cycle failed",
			"cycle", state.Cycle,
			"error", err,
			"consecutive_failures", state.ConsecutiveFailures,
			"sleep", w.cfg.RecoveryDelay.String(),
		)
		return w.cfg.RecoveryDelay
	}
	state.ConsecutiveFailures = 0
	w.log.Info("Discovery cycle complete",
		"cycle", state.Cycle,
		"stats", stats.Map(),
		"sleep", w.cfg.CycleInterval.String(),
	)
	return w.cfg.CycleInterval
}

// RunCycle processes the next batch of products from the catalog rotation.
func (w *Worker) RunCycle(ctx context.Context, state *LoopState) (stats CycleStats, err error) {
	ctx = ctxutil.Default(ctx)
	state.Cycle++
	state.LastCycleAt = w.now()

	ctx, span := observability.StartSpan(ctx, "discovery.cycle",
		attribute.Int("discovery.cycle", state.Cycle),
		attribute.Int("discovery.cursor", state.Cursor),
	)
	defer func() { observability.EndSpan(span, err) }()

	products, err := w.listBatch(ctx, state.Cursor)
	if err != nil {
		return stats, err
	}
	if len(products) == 0 && state.Cursor > 0 {
		state.Cursor = 0
		if products, err = w.listBatch(ctx, 0); err != nil {
			return stats, err
		}
	}
	if len(products) == 0 {
		return stats, ErrEmptyCatalog
	}
	state.advance(len(products), w.cfg.ProductsPerCycle)

	w.log.Info("Discovery cycle started", "cycle", state.Cycle, "products", len(products))
	w.processProducts(ctx, products, &stats)
	state.LastStats = stats
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	w.publish(ctx, types.DiscoveryEvent{Type: creators.EventCycleCompleted, Stats: stats.Map(), At: w.now()})
	return stats, nil
}

// Trigger starts an immediate pass over one company's products on its own
// goroutine. It may overlap the continuous loop.
func (w *Worker) Trigger(ctx context.Context, req TriggerRequest) *Task {
	ctx = ctxutil.Default(ctx)
	task := newTask(req)
	log := w.log.With("task_id", task.ID.String(), "company_id", req.CompanyID.String())
	go func() {
		var (
			stats CycleStats
			err   error
		)
		start := w.now()
		defer func() {
			status := "ok"
			if r := recover(); r != nil {
				log.Error("Triggered discovery panic", "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("triggered discovery panic: %v", r)
			}
			if err != nil {
				status = "error"
			}
			w.deps.Metrics.ObserveCycle(modeTriggered, status, w.now().Sub(start))
			task.finish(stats, err)
		}()

		log.Info("Immediate discovery triggered", "shop_domain", req.ShopDomain)
		stats, err = w.runTriggered(ctx, req)
		if err != nil {
			log.Error("Immediate discovery failed", "error", err)
			return
		}
		log.Info("Immediate discovery complete", "stats", stats.Map())
	}()
	return task
}

func (w *Worker) runTriggered(ctx context.Context, req TriggerRequest) (stats CycleStats, err error) {
	ctx, span := observability.StartSpan(ctx, "discovery.trigger",
		attribute.String("discovery.company_id", req.CompanyID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	products, err := w.deps.Products.ListByCompany(callCtx, nil, req.CompanyID, req.ShopDomain, w.cfg.ProductsPerCycle)
	cancel()
	if err != nil {
		return stats, fmt.Errorf("list company products: %w", err)
	}
	if len(products) == 0 {
		w.log.Warn("No products found for company", "company_id", req.CompanyID.String())
		return stats, nil
	}
	w.processProducts(ctx, products, &stats)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	w.publish(ctx, types.DiscoveryEvent{Type: creators.EventCycleCompleted, Stats: stats.Map(), At: w.now()})
	return stats, nil
}

func (w *Worker) listBatch(ctx context.Context, offset int) ([]*types.Product, error) {
	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	defer cancel()
	products, err := w.deps.Products.ListForDiscovery(callCtx, nil, offset, w.cfg.ProductsPerCycle)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (w *Worker) processProducts(ctx context.Context, products []*types.Product, stats *CycleStats) {
	for _, p := range products {
		if ctx.Err() != nil || p == nil {
			return
		}
		w.processProduct(ctx, p, stats)
		_ = ctxutil.Sleep(ctx, w.cfg.ProductDelay)
	}
}

func (w *Worker) processProduct(ctx context.Context, p *types.Product, stats *CycleStats) {
	ctx, span := observability.StartSpan(ctx, "discovery.product",
		attribute.String("product.id", p.ID.String()),
	)
	defer span.End()

	stats.Products++
	log := w.log.With("product_id", p.ID.String())
	keywords := w.keywordsFor(ctx, p)
	if len(keywords) == 0 {
		log.Warn("No search keywords for product", "title", p.Title)
		return
	}
	if len(keywords) > w.cfg.KeywordsPerProduct {
		keywords = keywords[:w.cfg.KeywordsPerProduct]
	}
	log.Debug("Processing product", "title", p.Title, "keywords", keywords)

	for _, kw := range keywords {
		if ctx.Err() != nil {
			return
		}
		stats.Keywords++
		if err := w.processKeywordSafe(ctx, p, kw, stats); err != nil {
			stats.Errors++
			log.Warn("Keyword processing failed", "keyword", kw, "error", err)
		}
		_ = ctxutil.Sleep(ctx, w.cfg.KeywordDelay)
	}
}

// keywordsFor returns the stored keywords, or generates and back-fills them.
func (w *Worker) keywordsFor(ctx context.Context, p *types.Product) []string {
	if kws := p.Keywords(); len(kws) > 0 {
		w.deps.Metrics.IncKeywordSource("stored")
		return kws
	}
	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	kws := w.deps.Keywords.Generate(callCtx, p.Title, p.Description, p.ProductType)
	cancel()
	if len(kws) == 0 {
		return nil
	}
	w.deps.Metrics.IncKeywordSource("generated")

	callCtx, cancel = ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	defer cancel()
	if err := w.deps.Products.UpdateSearchKeywords(callCtx, nil, p.ID, kws); err != nil {
		w.log.Warn("Keyword back-fill failed", "product_id", p.ID.String(), "error", err)
	} else {
		p.SearchKeywords = catalog.EncodeKeywords(kws)
	}
	return kws
}

// processKeywordSafe is the keyword failure boundary: errors and panics end
// this keyword only.
func (w *Worker) processKeywordSafe(ctx context.Context, p *types.Product, kw string, stats *CycleStats) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			w.log.Error("Keyword processing panic", "keyword", kw, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	videos, err := w.deps.Source.Search(callCtx, types.SearchRequest{
		Keyword:            kw,
		MaxResults:         w.cfg.VideosPerKeyword,
		PublishedAfterDays: w.cfg.PublishedAfterDays,
		Order:              w.cfg.SearchOrder,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("search %q: %w", kw, err)
	}
	if len(videos) == 0 {
		w.log.Debug("No videos found", "keyword", kw)
		return nil
	}

	for i := range videos {
		if ctx.Err() != nil {
			return nil
		}
		stats.Videos++
		outcome, err := w.processVideo(ctx, p, kw, videos[i], stats)
		if err != nil {
			outcome = "error"
			stats.Errors++
			w.log.Warn("Video processing failed", "video_id", videos[i].VideoID, "error", err)
		}
		w.deps.Metrics.IncVideoOutcome(outcome)
		_ = ctxutil.Sleep(ctx, w.cfg.VideoDelay)
	}
	return nil
}

// processVideo evaluates one candidate for one product and returns an
// outcome label.
func (w *Worker) processVideo(ctx context.Context, p *types.Product, kw string, v types.CandidateVideo, stats *CycleStats) (string, error) {
	if strings.TrimSpace(v.VideoID) == "" {
		return "invalid", fmt.Errorf("candidate without video id")
	}
	log := w.log.With("product_id", p.ID.String(), "video_id", v.VideoID)

	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	existing, err := w.deps.Videos.GetByVideoID(callCtx, nil, v.VideoID)
	cancel()
	if err != nil {
		return "", fmt.Errorf("lookup video: %w", err)
	}
	if existing != nil {
		return w.linkExisting(ctx, log, p, kw, v, existing, stats)
	}

	start := w.now()
	callCtx, cancel = ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	res := w.deps.Classifier.Classify(callCtx, v)
	cancel()
	w.deps.Metrics.ObserveClassify(res.Kind.String(), w.now().Sub(start))

	switch res.Kind {
	case creators.ClassifyRateLimited:
		stats.RateLimited++
		log.Info("Classifier rate limited, skipping video for this cycle", "reason", res.Reason)
		return "rate_limited", nil
	case creators.ClassifySuccess:
	default:
		stats.ClassifyFailed++
		log.Warn("Classification failed", "reason", res.Reason)
		return "classify_failed", nil
	}

	analysis := res.Analysis
	if analysis.IsEmpty() && strings.TrimSpace(res.Raw) != "" {
		log.Warn("Could not parse classifier output, scoring without analysis")
	}

	rel := Score(p, v, analysis, kw)
	ok, reason := Admit(rel.Score, v.Views, w.cfg.MinScore, w.cfg.MinViews)
	if !ok {
		stats.Rejected++
		log.Debug("Video rejected", "reason", reason)
		return "rejected", nil
	}

	vectorID := VectorID(v.VideoID)
	if err := w.indexVector(ctx, vectorID, v, analysis); err != nil {
		return "", err
	}

	now := w.now().UTC()
	record := &types.CreatorVideo{
		VideoID:      v.VideoID,
		URL:          v.URL,
		Title:        v.Title,
		Description:  v.Description,
		Thumbnail:    v.ThumbnailURL,
		ChannelTitle: v.ChannelTitle,
		ChannelID:    v.ChannelID,
		Email:        v.Email,
		Views:        v.Views,
		Likes:        v.Likes,
		Comments:     v.Comments,
		Analysis:     analysis.JSON(),
		VectorID:     vectorID,
		IndexedAt:    now,
	}
	if !v.PublishedAt.IsZero() {
		published := v.PublishedAt.UTC()
		record.PublishedAt = &published
	}
	callCtx, cancel = ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	created, err := w.deps.Videos.CreateIfAbsent(callCtx, nil, record)
	cancel()
	if err != nil {
		return "", fmt.Errorf("insert creator video: %w", err)
	}
	if created {
		stats.Indexed++
	}

	linked, err := w.createMatch(ctx, p, kw, v.VideoID, rel)
	if err != nil {
		return "", err
	}
	if !linked {
		return "already_linked", nil
	}
	stats.Linked++
	w.deps.Metrics.IncMatch("new")
	log.Info("Indexed creator video", "score", rel.Score, "admission", reason, "keyword", kw)
	return "indexed", nil
}

// linkExisting scores an already indexed video from its stored analysis. The
// classifier is not called again.
func (w *Worker) linkExisting(ctx context.Context, log *logger.Logger, p *types.Product, kw string, v types.CandidateVideo, existing *types.CreatorVideo, stats *CycleStats) (string, error) {
	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	linked, err := w.deps.Matches.Exists(callCtx, nil, p.ID, v.VideoID)
	cancel()
	if err != nil {
		return "", fmt.Errorf("lookup match: %w", err)
	}
	if linked {
		stats.AlreadyLinked++
		return "already_linked", nil
	}

	rel := Score(p, v, existing.StoredAnalysis(), kw)
	ok, reason := Admit(rel.Score, v.Views, w.cfg.MinScore, w.cfg.MinViews)
	if !ok {
		stats.Rejected++
		log.Debug("Existing video not linked", "reason", reason)
		return "rejected", nil
	}
	created, err := w.createMatch(ctx, p, kw, v.VideoID, rel)
	if err != nil {
		return "", err
	}
	if !created {
		stats.AlreadyLinked++
		return "already_linked", nil
	}
	stats.Linked++
	w.deps.Metrics.IncMatch("linked")
	log.Info("Linked existing video", "score", rel.Score, "keyword", kw)
	return "linked", nil
}

func (w *Worker) createMatch(ctx context.Context, p *types.Product, kw, videoID string, rel Relevance) (bool, error) {
	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	defer cancel()
	created, err := w.deps.Matches.CreateIfAbsent(callCtx, nil, &types.ProductCreatorMatch{
		ID:                 uuid.New(),
		ProductID:          p.ID,
		VideoID:            videoID,
		SourceKeyword:      kw,
		RelevanceScore:     rel.Score,
		RelevanceReasoning: rel.Reasoning,
		CreatedAt:          w.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("insert match: %w", err)
	}
	if created {
		w.publish(ctx, types.DiscoveryEvent{
			Type:      creators.EventMatchCreated,
			ProductID: p.ID,
			VideoID:   videoID,
			Score:     rel.Score,
			Keyword:   kw,
			At:        w.now(),
		})
	}
	return created, nil
}

func (w *Worker) indexVector(ctx context.Context, vectorID string, v types.CandidateVideo, a types.Analysis) error {
	callCtx, cancel := ctxutil.Bounded(ctx, w.cfg.CallTimeout)
	defer cancel()
	embs, err := w.deps.Embedder.Embed(callCtx, []string{EmbeddingText(v, a)})
	if err != nil {
		return fmt.Errorf("embed video: %w", err)
	}
	if len(embs) == 0 || len(embs[0]) == 0 {
		return fmt.Errorf("embed video: empty embedding")
	}
	if err := w.deps.Vectors.Upsert(callCtx, w.cfg.VectorNamespace, []pinecone.Vector{{
		ID:       vectorID,
		Values:   embs[0],
		Metadata: VectorMetadata(v, a),
	}}); err != nil {
		return fmt.Errorf("upsert vector: %w", err)
	}
	return nil
}

func (w *Worker) publish(ctx context.Context, ev types.DiscoveryEvent) {
	if w.deps.Events == nil {
		return
	}
	callCtx, cancel := ctxutil.Bounded(ctx, 5*time.Second)
	defer cancel()
	if err := w.deps.Events.Publish(callCtx, ev); err != nil {
		w.log.Warn("Publish discovery event failed", "type", ev.Type, "error", err)
	}
}

func VectorID(videoID string) string { return "video_" + videoID }

// EmbeddingText is the text embedded for a creator video.
func EmbeddingText(v types.CandidateVideo, a types.Analysis) string {
	return fmt.Sprintf("%s %s %s %s", v.Title, v.Description, a.Aesthetic, a.ToneVibe)
}

// VectorMetadata truncates fields to fit vector store metadata limits.
func VectorMetadata(v types.CandidateVideo, a types.Analysis) map[string]any {
	cats := a.PotentialCategories
	if len(cats) > 5 {
		cats = cats[:5]
	}
	return map[string]any{
		"video_id":   v.VideoID,
		"title":      truncateRunes(v.Title, 200),
		"channel":    truncateRunes(v.ChannelTitle, 100),
		"channel_id": v.ChannelID,
		"categories": truncateRunes(strings.Join(cats, ", "), 200),
	}
}
