package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Participant handlers
func (a *API) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toParticipantResponses(a.service.ListParticipants()))
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toParticipantResponses(a.service.Leaderboard()))
}

func (a *API) handleRegisterParticipant(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := a.service.RegisterParticipant(req.Name)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantResponse(p))
}

func (a *API) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a.service.RemoveParticipant(id)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "deleted",
	})
}

func (a *API) handleRecordConsumption(w http.ResponseWriter, r *http.Request) {
	var req consumptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}

	p, err := a.service.RecordConsumption(req.UserID, req.Amount.float())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantResponse(p))
}

// Barrel session handlers
func (a *API) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.service.CurrentSession()
	if !ok {
		writeJSON(w, http.StatusOK, noSessionResponse{Open: false})
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (a *API) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := a.service.OpenSession(req.Name, req.Buyer, req.Price.float(), req.Volume.float())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{Status: "started", Session: toSessionResponse(sess)})
}

func (a *API) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	rec, err := a.service.CloseSession(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(rec))
}

func (a *API) handleListHistory(w http.ResponseWriter, r *http.Request) {
	records := a.service.ListHistory()
	out := make([]historyResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toHistoryResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	a.service.ResetAll()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "all data cleared",
	})
}
