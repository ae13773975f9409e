package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niallroche/data-engineering-mlops/internal/usecase"
)

// PredictionHandler handles prediction HTTP requests
type PredictionHandler struct {
	predictionUC usecase.PredictionUsecase
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionUC usecase.PredictionUsecase) *PredictionHandler {
	return &PredictionHandler{predictionUC: predictionUC}
}

// Predict handles POST /api/v1/predict
func (h *PredictionHandler) Predict(c *gin.Context) {
	raw, err := readBody(c)
	if err != nil {
		status, code := bodyErrorStatus(err)
		respondError(c, status, code, err.Error())
		return
	}

	output, err := h.predictionUC.Predict(c.Request.Context(), &usecase.PredictInput{
		RawInput:  raw,
		RequestID: requestID(c),
	})
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// PredictLegacy handles POST /predict with the unwrapped body older clients expect
func (h *PredictionHandler) PredictLegacy(c *gin.Context) {
	raw, err := readBody(c)
	if err != nil {
		status, code := bodyErrorStatus(err)
		respondLegacyError(c, status, code, err.Error())
		return
	}

	output, err := h.predictionUC.Predict(c.Request.Context(), &usecase.PredictInput{
		RawInput:  raw,
		RequestID: requestID(c),
	})
	if err != nil {
		errResp := MapUsecaseError(err)
		respondLegacyError(c, errResp.StatusCode, errResp.Code, errResp.Message)
		return
	}

	respondLegacy(c, http.StatusOK, output)
}

// ModelInfo handles GET /api/v1/model
func (h *PredictionHandler) ModelInfo(c *gin.Context) {
	respondSuccess(c, http.StatusOK, h.predictionUC.ModelInfo())
}
