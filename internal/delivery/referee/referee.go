package referee

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"margo/internal/bootstrap"
	"margo/internal/domain/game"
	"margo/internal/httpresponse"
	refereeuc "margo/internal/usecase/referee"
	"margo/internal/utils"
)

type RefereeHandler struct {
	cfg       bootstrap.Config
	log       *zap.SugaredLogger
	refereeUC *refereeuc.RefereeUseCase
}

func NewRefereeHandler(cfg bootstrap.Config, log *zap.SugaredLogger, refereeUC *refereeuc.RefereeUseCase) *RefereeHandler {
	return &RefereeHandler{
		cfg:       cfg,
		log:       log,
		refereeUC: refereeUC,
	}
}

func (h *RefereeHandler) Routes(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Post("/place", h.HandlePlace)
	r.Post("/legal", h.HandleLegal)

	r.Route("/matches", func(r chi.Router) {
		r.Post("/", h.HandleNewMatch)
		r.Get("/{matchID}", h.HandleGetMatch)
		r.Post("/{matchID}/play", h.HandlePlay)
		r.Post("/{matchID}/pass", h.HandlePass)
		r.Post("/{matchID}/resign", h.HandleResign)
		r.Get("/{matchID}/journal", h.HandleJournal)
	})
}

func (h *RefereeHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "ok")
}

func (h *RefereeHandler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var req game.PlaceRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Infof("place: %v", err)
		httpresponse.WriteError(w, err)
		return
	}

	requestID := uuid.New().String()
	result, err := h.refereeUC.Place(r.Context(), requestID, req.Position, req.Cell, req.Side)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.PlaceResponse{
		RequestID: requestID,
		Result:    result,
	})
}

func (h *RefereeHandler) HandleLegal(w http.ResponseWriter, r *http.Request) {
	var req game.LegalRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Infof("legal: %v", err)
		httpresponse.WriteError(w, err)
		return
	}

	requestID := uuid.New().String()
	cells, err := h.refereeUC.Legal(r.Context(), req.Position, req.Side)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.LegalResponse{
		RequestID: requestID,
		Cells:     cells,
	})
}

func (h *RefereeHandler) HandleNewMatch(w http.ResponseWriter, r *http.Request) {
	var req game.NewMatchRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeJSONRequest(r, &req); err != nil {
			httpresponse.WriteError(w, err)
			return
		}
	}

	st, err := h.refereeUC.NewMatch(r.Context(), req.Size)
	if err != nil {
		h.fail(w, "", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, st)
}

func (h *RefereeHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	st, err := h.refereeUC.MatchState(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		h.fail(w, "", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *RefereeHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	var req game.PlayRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	requestID := uuid.New().String()
	st, err := h.refereeUC.PlayMatch(r.Context(), requestID, chi.URLParam(r, "matchID"), req.Side, req.Cell)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *RefereeHandler) HandlePass(w http.ResponseWriter, r *http.Request) {
	var req game.TurnRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	st, err := h.refereeUC.PassMatch(r.Context(), chi.URLParam(r, "matchID"), req.Side)
	if err != nil {
		h.fail(w, "", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *RefereeHandler) HandleResign(w http.ResponseWriter, r *http.Request) {
	var req game.TurnRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	st, err := h.refereeUC.ResignMatch(r.Context(), chi.URLParam(r, "matchID"), req.Side)
	if err != nil {
		h.fail(w, "", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *RefereeHandler) HandleJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.refereeUC.MatchJournal(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		h.fail(w, "", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, entries)
}

func (h *RefereeHandler) fail(w http.ResponseWriter, requestID string, err error) {
	if httpresponse.StatusOf(err) == http.StatusInternalServerError {
		h.log.Errorf("request %s: %v", requestID, err)
	}
	httpresponse.WriteError(w, err)
}
