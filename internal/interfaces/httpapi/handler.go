package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	sonic "github.com/bytedance/sonic"
	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
	"github.com/pickemhq/pickem-pool/internal/platform/logging"
	"github.com/pickemhq/pickem-pool/internal/usecase"
)

type Handler struct {
	weekService        *usecase.WeekService
	gameService        *usecase.GameService
	pickService        *usecase.PickService
	submissionService  *usecase.SubmissionService
	resultService      *usecase.ResultService
	participantService *usecase.ParticipantService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	weekService *usecase.WeekService,
	gameService *usecase.GameService,
	pickService *usecase.PickService,
	submissionService *usecase.SubmissionService,
	resultService *usecase.ResultService,
	participantService *usecase.ParticipantService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		weekService:        weekService,
		gameService:        gameService,
		pickService:        pickService,
		submissionService:  submissionService,
		resultService:      resultService,
		participantService: participantService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListWeekGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekGames")
	defer span.End()

	identity, ok := identityFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: identity is missing from request context", usecase.ErrUnauthorized))
		return
	}

	weekID := strings.TrimSpace(r.PathValue("weekID"))
	rows, err := h.gameService.ListWeekGames(ctx, identity, weekID)
	if err != nil {
		h.logger.WarnContext(ctx, "list week games failed", "week_id", weekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weekGameDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, weekGameToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SavePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePick")
	defer span.End()

	identity, ok := identityFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: identity is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	var req savePickRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.pickService.Save(ctx, identity, usecase.SavePickInput{
		GameID:     gameID,
		Side:       pick.Side(req.Side),
		TriplePlay: req.TriplePlay,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save pick failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickToDTO(saved))
}

func (h *Handler) DeletePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePick")
	defer span.End()

	identity, ok := identityFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: identity is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	if err := h.pickService.Delete(ctx, identity, gameID); err != nil {
		h.logger.WarnContext(ctx, "delete pick failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) SubmitWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitWeekPicks")
	defer span.End()

	identity, ok := identityFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: identity is missing from request context", usecase.ErrUnauthorized))
		return
	}

	weekID := strings.TrimSpace(r.PathValue("weekID"))
	var req submitBatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	batch := make([]usecase.BatchPick, 0, len(req.Picks))
	for _, item := range req.Picks {
		batch = append(batch, usecase.BatchPick{
			GameID:     item.GameID,
			Side:       pick.Side(item.Side),
			TriplePlay: item.TriplePlay,
		})
	}

	submitted, err := h.submissionService.SubmitBatch(ctx, identity, usecase.SubmitBatchInput{
		WeekID: weekID,
		Picks:  batch,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit week picks failed", "week_id", weekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickDTO, 0, len(submitted))
	for _, item := range submitted {
		items = append(items, pickToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) FinalizeGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeGame")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	var req finalizeGameRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	graded, err := h.resultService.Finalize(ctx, usecase.FinalizeInput{
		GameID:    gameID,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
		Manual:    true,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "finalize game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickDTO, 0, len(graded))
	for _, item := range graded {
		items = append(items, pickToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateWeek")
	defer span.End()

	var req createWeekRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startsAt, err := parseRequestTime(req.StartsAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: starts_at: %v", usecase.ErrInvalidInput, err))
		return
	}
	endsAt, err := parseRequestTime(req.EndsAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: ends_at: %v", usecase.ErrInvalidInput, err))
		return
	}
	cutoff, err := parseOptionalRequestTime(req.SubmissionCutoff)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: submission_cutoff: %v", usecase.ErrInvalidInput, err))
		return
	}

	created, err := h.weekService.Create(ctx, usecase.CreateWeekInput{
		Name:             req.Name,
		Season:           req.Season,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
		SubmissionCutoff: cutoff,
		PickerChoiceCap:  req.PickerChoiceCap,
		TriplePlayCap:    req.TriplePlayCap,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create week failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, weekToDTO(created))
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGame")
	defer span.End()

	weekID := strings.TrimSpace(r.PathValue("weekID"))
	var req createGameRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kickoffAt, err := parseRequestTime(req.KickoffAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: kickoff_at: %v", usecase.ErrInvalidInput, err))
		return
	}

	input := usecase.CreateGameInput{
		WeekID:     weekID,
		HomeTeam:   req.HomeTeam,
		AwayTeam:   req.AwayTeam,
		KickoffAt:  kickoffAt,
		MustPick:   req.MustPick,
		ExternalID: req.ExternalID,
	}
	if req.Spread != nil || req.Total != nil || req.MoneylineHome != nil || req.MoneylineAway != nil {
		input.Quote = &game.Quote{
			Spread:        req.Spread,
			Total:         req.Total,
			MoneylineHome: req.MoneylineHome,
			MoneylineAway: req.MoneylineAway,
			Source:        req.QuoteSource,
		}
	}

	created, err := h.gameService.Create(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "create game failed", "week_id", weekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameToDTO(created))
}

func (h *Handler) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterParticipant")
	defer span.End()

	var req registerParticipantRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	registered, err := h.participantService.Register(ctx, req.ParticipantID, req.DisplayName)
	if err != nil {
		h.logger.WarnContext(ctx, "register participant failed", "participant_id", req.ParticipantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, participantDTO{
		ID:          registered.ID,
		DisplayName: registered.DisplayName,
		JoinedAtUTC: registered.JoinedAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type savePickRequest struct {
	Side       string `json:"side" validate:"required,oneof=home_spread away_spread"`
	TriplePlay bool   `json:"triple_play"`
}

type submitBatchRequest struct {
	Picks []submitBatchPickRecord `json:"picks" validate:"required,min=1,dive"`
}

type submitBatchPickRecord struct {
	GameID     string `json:"game_id" validate:"required"`
	Side       string `json:"side" validate:"required,oneof=home_spread away_spread"`
	TriplePlay bool   `json:"triple_play"`
}

type finalizeGameRequest struct {
	HomeScore int `json:"home_score" validate:"gte=0"`
	AwayScore int `json:"away_score" validate:"gte=0"`
}

type createWeekRequest struct {
	Name             string   `json:"name" validate:"required,max=120"`
	Season           int      `json:"season" validate:"required,gt=0"`
	StartsAt         string   `json:"starts_at" validate:"required"`
	EndsAt           string   `json:"ends_at" validate:"required"`
	SubmissionCutoff string   `json:"submission_cutoff"`
	PickerChoiceCap  *int     `json:"picker_choice_cap" validate:"omitempty,gte=0"`
	TriplePlayCap    *int     `json:"triple_play_cap" validate:"omitempty,gte=0"`
}

type createGameRequest struct {
	HomeTeam      string   `json:"home_team" validate:"required,max=120"`
	AwayTeam      string   `json:"away_team" validate:"required,max=120"`
	KickoffAt     string   `json:"kickoff_at" validate:"required"`
	MustPick      bool     `json:"must_pick"`
	ExternalID    int64    `json:"external_id" validate:"gte=0"`
	Spread        *float64 `json:"spread"`
	Total         *float64 `json:"total"`
	MoneylineHome *int     `json:"moneyline_home"`
	MoneylineAway *int     `json:"moneyline_away"`
	QuoteSource   string   `json:"quote_source" validate:"max=40"`
}

type registerParticipantRequest struct {
	ParticipantID string `json:"participant_id" validate:"required,max=80"`
	DisplayName   string `json:"display_name" validate:"required,max=120"`
}

type weekDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Season           int    `json:"season"`
	StartsAt         string `json:"startsAt"`
	EndsAt           string `json:"endsAt"`
	SubmissionCutoff string `json:"submissionCutoff,omitempty"`
	PickerChoiceCap  *int   `json:"pickerChoiceCap,omitempty"`
	TriplePlayCap    *int   `json:"triplePlayCap,omitempty"`
}

type gameDTO struct {
	ID            string   `json:"id"`
	WeekID        string   `json:"weekId"`
	HomeTeam      string   `json:"homeTeam"`
	AwayTeam      string   `json:"awayTeam"`
	KickoffAt     string   `json:"kickoffAt"`
	MustPick      bool     `json:"mustPick"`
	Status        string   `json:"status"`
	Spread        *float64 `json:"spread,omitempty"`
	Total         *float64 `json:"total,omitempty"`
	MoneylineHome *int     `json:"moneylineHome,omitempty"`
	MoneylineAway *int     `json:"moneylineAway,omitempty"`
	QuoteSource   string   `json:"quoteSource,omitempty"`
	QuotedAt      string   `json:"quotedAt,omitempty"`
	HomeScore     *int     `json:"homeScore,omitempty"`
	AwayScore     *int     `json:"awayScore,omitempty"`
}

type pickDTO struct {
	ID          string   `json:"id"`
	GameID      string   `json:"gameId"`
	Side        string   `json:"side"`
	Spread      *float64 `json:"spread,omitempty"`
	TriplePlay  bool     `json:"triplePlay"`
	Submitted   bool     `json:"submitted"`
	Result      string   `json:"result,omitempty"`
	EvaluatedAt string   `json:"evaluatedAt,omitempty"`
}

type lineChangeDTO struct {
	OriginalSpread    float64  `json:"originalSpread"`
	CurrentSpread     float64  `json:"currentSpread"`
	HasChanged        bool     `json:"hasChanged"`
	IsFavorable       bool     `json:"isFavorable"`
	ImprovementAmount *float64 `json:"improvementAmount,omitempty"`
}

type weekGameDTO struct {
	Game       gameDTO        `json:"game"`
	Pick       *pickDTO       `json:"pick,omitempty"`
	LineChange *lineChangeDTO `json:"lineChange,omitempty"`
}

type participantDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	JoinedAtUTC string `json:"joinedAtUtc"`
}

func weekToDTO(v week.Week) weekDTO {
	dto := weekDTO{
		ID:              v.ID,
		Name:            v.Name,
		Season:          v.Season,
		StartsAt:        v.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:          v.EndsAt.UTC().Format(time.RFC3339),
		PickerChoiceCap: v.PickerChoiceCap,
		TriplePlayCap:   v.TriplePlayCap,
	}
	if v.SubmissionCutoff != nil {
		dto.SubmissionCutoff = v.SubmissionCutoff.UTC().Format(time.RFC3339)
	}
	return dto
}

func gameToDTO(v game.Game) gameDTO {
	dto := gameDTO{
		ID:        v.ID,
		WeekID:    v.WeekID,
		HomeTeam:  v.HomeTeam,
		AwayTeam:  v.AwayTeam,
		KickoffAt: v.KickoffAt.UTC().Format(time.RFC3339),
		MustPick:  v.MustPick,
		Status:    game.NormalizeStatus(v.Status),
		HomeScore: v.HomeScore,
		AwayScore: v.AwayScore,
	}
	if v.Quote != nil {
		dto.Spread = v.Quote.Spread
		dto.Total = v.Quote.Total
		dto.MoneylineHome = v.Quote.MoneylineHome
		dto.MoneylineAway = v.Quote.MoneylineAway
		dto.QuoteSource = v.Quote.Source
		dto.QuotedAt = v.Quote.QuotedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func pickToDTO(v pick.Pick) pickDTO {
	dto := pickDTO{
		ID:         v.ID,
		GameID:     v.GameID,
		Side:       string(v.Side),
		Spread:     v.Spread,
		TriplePlay: v.TriplePlay,
		Submitted:  v.Submitted,
	}
	if v.Result != nil {
		dto.Result = string(*v.Result)
	}
	if v.EvaluatedAt != nil {
		dto.EvaluatedAt = v.EvaluatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func lineChangeToDTO(v *pick.LineChange) *lineChangeDTO {
	if v == nil {
		return nil
	}
	return &lineChangeDTO{
		OriginalSpread:    v.OriginalSpread,
		CurrentSpread:     v.CurrentSpread,
		HasChanged:        v.HasChanged,
		IsFavorable:       v.IsFavorable,
		ImprovementAmount: v.ImprovementAmount,
	}
}

func weekGameToDTO(v usecase.WeekGame) weekGameDTO {
	dto := weekGameDTO{
		Game:       gameToDTO(v.Game),
		LineChange: lineChangeToDTO(v.LineChange),
	}
	if v.Pick != nil {
		item := pickToDTO(*v.Pick)
		dto.Pick = &item
	}
	return dto
}

func parseRequestTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp: %v", err)
	}
	return parsed.UTC(), nil
}

func parseOptionalRequestTime(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseRequestTime(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
