package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/agent"
	"github.com/BaSui01/agentquorum/agent/collaboration"
	"github.com/BaSui01/agentquorum/agent/persistence"
	"github.com/BaSui01/agentquorum/agent/strategy"
	"github.com/BaSui01/agentquorum/api"
	"github.com/BaSui01/agentquorum/types"
)

// DefaultHistoryLimit GET /api/v1/history 未指定 limit 时的条数
const DefaultHistoryLimit = 50

// =============================================================================
// 🤝 协调 Handler
// =============================================================================

// CoordinationHandler 协调 API 处理器
type CoordinationHandler struct {
	coordinator *collaboration.Coordinator
	agents      []agent.Agent
	byID        map[string]agent.Agent
	history     persistence.HistoryStore
	logger      *zap.Logger
}

// NewCoordinationHandler 创建协调处理器，pool 为可选 Agent 池，history 可为 nil
func NewCoordinationHandler(coordinator *collaboration.Coordinator, pool []agent.Agent, history persistence.HistoryStore, logger *zap.Logger) *CoordinationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	byID := make(map[string]agent.Agent, len(pool))
	for _, a := range pool {
		byID[a.Profile().ID] = a
	}
	return &CoordinationHandler{
		coordinator: coordinator,
		agents:      pool,
		byID:        byID,
		history:     history,
		logger:      logger.With(zap.String("handler", "coordination")),
	}
}

// HandleCoordinate 处理 POST /api/v1/coordinate
// @Summary 发起协调
// @Tags 协调
// @Accept json
// @Produce json
// @Param request body api.CoordinateRequest true "协调请求"
// @Success 200 {object} Response{data=types.CoordinationResult}
// @Failure 400 {object} Response
// @Failure 422 {object} Response
// @Failure 502 {object} Response
// @Router /api/v1/coordinate [post]
func (h *CoordinationHandler) HandleCoordinate(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.CoordinateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	creq, timeout, err := h.buildRequest(&req)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	ctx := r.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := h.coordinator.Coordinate(ctx, creq)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("coordination completed",
		zap.String("id", result.ID),
		zap.String("strategy", result.StrategyName),
		zap.Int("responses", len(result.Responses)),
	)
	WriteSuccess(w, result)
}

func (h *CoordinationHandler) buildRequest(req *api.CoordinateRequest) (collaboration.Request, time.Duration, error) {
	var out collaboration.Request
	if strings.TrimSpace(req.Query) == "" {
		return out, 0, types.NewError(types.ErrInvalidRequest, "query is required")
	}
	out.Query = req.Query
	out.Context = req.Context

	if len(req.AgentIDs) == 0 {
		out.Agents = h.agents
	} else {
		out.Agents = make([]agent.Agent, 0, len(req.AgentIDs))
		for _, id := range req.AgentIDs {
			a, ok := h.byID[id]
			if !ok {
				return out, 0, types.NewError(types.ErrInvalidRequest, "unknown agent: "+id)
			}
			out.Agents = append(out.Agents, a)
		}
	}

	if req.Strategy != "" {
		k, err := strategy.ParseKind(req.Strategy)
		if err != nil {
			return out, 0, types.NewError(types.ErrInvalidRequest, err.Error()).WithCause(err)
		}
		out.Strategy = &k
	}

	var timeout time.Duration
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			return out, 0, types.NewError(types.ErrInvalidRequest, "invalid timeout: "+req.Timeout)
		}
		timeout = d
	}
	return out, timeout, nil
}

// HandleStrategies 处理 GET /api/v1/strategies
// @Summary 策略目录
// @Tags 协调
// @Produce json
// @Success 200 {object} Response{data=[]api.StrategyInfo}
// @Router /api/v1/strategies [get]
func (h *CoordinationHandler) HandleStrategies(w http.ResponseWriter, r *http.Request) {
	stats := h.coordinator.State().Tracker.Snapshot()
	all := h.coordinator.Registry().All()

	out := make([]api.StrategyInfo, 0, len(all))
	for _, s := range all {
		st := stats[s.Kind]
		out = append(out, api.StrategyInfo{
			Kind:                 string(s.Kind),
			Name:                 s.Name,
			MinAgents:            s.MinAgents,
			MaxAgents:            s.MaxAgents,
			RequiredCapabilities: s.RequiredCapabilities,
			Performance: api.StrategyStats{
				Count: st.Count,
				AvgMS: millis(st.Avg),
				MinMS: millis(st.Min),
				MaxMS: millis(st.Max),
			},
		})
	}
	WriteSuccess(w, out)
}

// HandleAgents 处理 GET /api/v1/agents
// @Summary Agent 池
// @Tags 协调
// @Produce json
// @Success 200 {object} Response{data=[]api.AgentInfo}
// @Router /api/v1/agents [get]
func (h *CoordinationHandler) HandleAgents(w http.ResponseWriter, r *http.Request) {
	out := make([]api.AgentInfo, 0, len(h.agents))
	for _, p := range agent.Profiles(h.agents) {
		out = append(out, api.AgentInfo{
			ID:                 p.ID,
			Name:               p.DisplayName,
			Tier:               p.Tier,
			Capabilities:       p.Capabilities,
			SpecializationTags: p.SpecializationTags,
		})
	}
	WriteSuccess(w, out)
}

// HandleHistory 处理 GET /api/v1/history?strategy=&limit=
// @Summary 协调历史
// @Tags 协调
// @Produce json
// @Param strategy query string false "策略过滤"
// @Param limit query int false "返回条数"
// @Success 200 {object} Response{data=[]persistence.Record}
// @Router /api/v1/history [get]
func (h *CoordinationHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultHistoryLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "limit must be a positive integer", h.logger)
			return
		}
		limit = n
	}

	name := q.Get("strategy")
	if name != "" {
		if _, err := strategy.ParseKind(name); err != nil {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, err.Error(), h.logger)
			return
		}
	}

	if h.history == nil {
		WriteSuccess(w, []*persistence.Record{})
		return
	}

	records, err := h.history.ListRecords(r.Context(), name, limit)
	if err != nil {
		WriteError(w, types.NewError(types.ErrInternalError, "failed to list history").WithCause(err), h.logger)
		return
	}
	if records == nil {
		records = []*persistence.Record{}
	}
	WriteSuccess(w, records)
}

// Routes 注册协调端点
func (h *CoordinationHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/coordinate", h.HandleCoordinate)
	mux.HandleFunc("GET /api/v1/strategies", h.HandleStrategies)
	mux.HandleFunc("GET /api/v1/agents", h.HandleAgents)
	mux.HandleFunc("GET /api/v1/history", h.HandleHistory)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
