package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

const (
	payloadNamespaceKey = "_mt_namespace"
	payloadVectorIDKey  = "_mt_vector_id"
	maxErrorBodyBytes   = 1024
)

var pointIDNamespaceUUID = uuid.MustParse("6b0c8a4e-93f1-4d55-9a57-3f2a8e1d7c20")

type vectorStore struct {
	log      *logger.Logger
	cfg      Config
	baseURL  string
	distance string
	http     *http.Client
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

type searchHit struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

// NewVectorStore verifies the collection is reachable before returning.
// Vector ids are mapped to deterministic UUID point ids; the original id and
// namespace ride along in the payload.
func NewVectorStore(ctx context.Context, log *logger.Logger, cfg Config) (pinecone.VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	s := &vectorStore{
		log:     log.With("service", "QdrantVectorStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	if err := s.verifyCollection(ctx); err != nil {
		return nil, err
	}
	s.log.Info("Qdrant vector store selected",
		"collection", cfg.Collection,
		"vector_dim", cfg.VectorDim,
		"distance", s.distance,
	)
	return s, nil
}

func (s *vectorStore) Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error {
	const op = "upsert"
	if len(vectors) == 0 {
		return nil
	}
	ns := s.qualifyNamespace(namespace)
	points := make([]map[string]any, 0, len(vectors))
	for _, v := range vectors {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			return opErr(op, OperationErrorValidation, "vector id is required", nil)
		}
		if len(v.Values) == 0 {
			return opErr(op, OperationErrorValidation, fmt.Sprintf("vector %q has empty values", id), nil)
		}
		if s.cfg.VectorDim > 0 && len(v.Values) != s.cfg.VectorDim {
			return opErr(op, OperationErrorValidation,
				fmt.Sprintf("vector %q dimension mismatch: expected=%d got=%d", id, s.cfg.VectorDim, len(v.Values)), nil)
		}
		payload := make(map[string]any, len(v.Metadata)+2)
		for k, val := range v.Metadata {
			payload[k] = val
		}
		payload[payloadNamespaceKey] = ns
		payload[payloadVectorIDKey] = id
		points = append(points, map[string]any{
			"id":      s.pointID(ns, id),
			"vector":  v.Values,
			"payload": payload,
		})
	}
	return s.doJSON(ctx, op, http.MethodPut, s.collectionPath("/points?wait=true"), map[string]any{"points": points}, nil)
}

func (s *vectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	const op = "query"
	if len(q) == 0 {
		return nil, opErr(op, OperationErrorValidation, "query vector required", nil)
	}
	if topK <= 0 {
		topK = 10
	}
	ns := s.qualifyNamespace(namespace)
	must, err := translateFilter(ns, filter)
	if err != nil {
		return nil, err
	}

	var hits []searchHit
	if err := s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/search"), map[string]any{
		"vector":       q,
		"limit":        topK,
		"with_payload": true,
		"filter":       map[string]any{"must": must},
	}, &hits); err != nil {
		return nil, err
	}

	out := make([]pinecone.VectorMatch, 0, len(hits))
	for _, h := range hits {
		id, _ := h.Payload[payloadVectorIDKey].(string)
		if id == "" {
			continue
		}
		meta := make(map[string]any, len(h.Payload))
		for k, v := range h.Payload {
			if k != payloadNamespaceKey && k != payloadVectorIDKey {
				meta[k] = v
			}
		}
		out = append(out, pinecone.VectorMatch{ID: id, Score: s.normalizeScore(h.Score), Metadata: meta})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *vectorStore) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	ns := s.qualifyNamespace(namespace)
	points := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			points = append(points, s.pointID(ns, id))
		}
	}
	if len(points) == 0 {
		return nil
	}
	return s.doJSON(ctx, "delete", http.MethodPost, s.collectionPath("/points/delete?wait=true"), map[string]any{"points": points}, nil)
}

// translateFilter supports equality on scalar payload fields and {"$in": [...]}.
func translateFilter(ns string, filter map[string]any) ([]any, error) {
	must := []any{matchValue(payloadNamespaceKey, ns)}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := filter[k].(type) {
		case string, bool, int, int64, float64:
			must = append(must, matchValue(k, v))
		case map[string]any:
			in, ok := v["$in"].([]any)
			if !ok || len(v) != 1 {
				return nil, opErr("query", OperationErrorUnsupportedFilter, fmt.Sprintf("unsupported operator on %q", k), nil)
			}
			must = append(must, map[string]any{"key": k, "match": map[string]any{"any": in}})
		default:
			return nil, opErr("query", OperationErrorUnsupportedFilter, fmt.Sprintf("unsupported value for %q", k), nil)
		}
	}
	return must, nil
}

func matchValue(key string, v any) map[string]any {
	return map[string]any{"key": key, "match": map[string]any{"value": v}}
}

func (s *vectorStore) verifyCollection(ctx context.Context) error {
	const op = "bootstrap_verify"
	var result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	}
	if err := s.doJSON(ctx, op, http.MethodGet, s.collectionPath(""), nil, &result); err != nil {
		return err
	}
	size := result.Config.Params.Vectors.Size
	if s.cfg.VectorDim > 0 && size != 0 && size != s.cfg.VectorDim {
		return opErr(op, OperationErrorValidation,
			fmt.Sprintf("collection %q vector size mismatch: expected=%d actual=%d", s.cfg.Collection, s.cfg.VectorDim, size), nil)
	}
	if s.cfg.VectorDim == 0 {
		s.cfg.VectorDim = size
	}
	s.distance = strings.TrimSpace(result.Config.Params.Vectors.Distance)
	return nil
}

func (s *vectorStore) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, s.baseURL+path, body)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return classifyCallError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*maxErrorBodyBytes))
	if err != nil {
		return opErr(op, OperationErrorDecodeFailed, "read response failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBodyBytes {
			raw = raw[:maxErrorBodyBytes]
		}
		return &OperationError{
			Code:       OperationErrorRequestFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("body=%q", string(raw)),
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode envelope failed", err)
	}
	if msg := envelopeError(env.Status); msg != "" {
		return &OperationError{Code: OperationErrorRequestFailed, Operation: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode result failed", err)
	}
	return nil
}

func classifyCallError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, "request timed out", err)
	}
	return opErr(op, OperationErrorTransportFailed, "request failed", err)
}

func envelopeError(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if strings.EqualFold(asString, "ok") {
			return ""
		}
		return "status=" + asString
	}
	var asObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Error != "" {
		return asObject.Error
	}
	return "status=" + status
}

func (s *vectorStore) qualifyNamespace(namespace string) string {
	ns := strings.TrimSpace(namespace)
	prefix := strings.TrimSpace(s.cfg.NamespacePrefix)
	switch {
	case prefix == "":
		return ns
	case ns == "":
		return prefix
	default:
		return prefix + ":" + ns
	}
}

func (s *vectorStore) pointID(ns, vectorID string) string {
	return uuid.NewSHA1(pointIDNamespaceUUID, []byte(ns+"|"+vectorID)).String()
}

func (s *vectorStore) collectionPath(suffix string) string {
	return "/collections/" + s.cfg.Collection + suffix
}

func (s *vectorStore) normalizeScore(score float64) float64 {
	switch strings.ToLower(s.distance) {
	case "euclid", "manhattan":
		if score < 0 {
			score = -score
		}
		return 1.0 / (1.0 + score)
	default:
		return score
	}
}
