package api

import (
	"bufio"
	"io"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/NefariousNiru/papertrail-go/pkg/apperr"
)

// healthzHandler handles GET /healthz (spec.md §6).
func (s *Server) healthzHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{OK: true})
}

// validateAPIKeyHandler handles POST /api/v1/validate-api-key.
func (s *Server) validateAPIKeyHandler(c *echo.Context) error {
	var req validateKeyRequest
	if err := c.Bind(&req); err != nil || req.APIKey == "" {
		return mapServiceError(apperr.NewValidationError("apiKey", "must be a non-empty string"))
	}

	if err := s.llmClient.ValidateKey(c.Request().Context(), req.APIKey); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, validateKeyResponse{OK: true})
}

// uploadPaperHandler handles POST /api/v1/upload-paper.
func (s *Server) uploadPaperHandler(c *echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return mapServiceError(apperr.NewValidationError("file", "a PDF file is required"))
	}
	if c.FormValue("apiKey") == "" {
		return mapServiceError(apperr.NewValidationError("apiKey", "must be a non-empty string"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return mapServiceError(apperr.NewValidationError("file", "could not be read"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return mapServiceError(apperr.NewValidationError("file", "could not be read"))
	}

	jobID, err := s.paper.CreateJobForFile(c.Request().Context(), data)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, uploadPaperResponse{JobID: jobID})
}

// streamClaimHandler handles POST /api/v1/stream-claim, writing the
// Orchestrator's NDJSON sequence to the response body and flushing after
// every line so the client observes events as they are produced (spec.md
// §6, §5 "each NDJSON write as a potential cancellation point").
func (s *Server) streamClaimHandler(c *echo.Context) error {
	var req streamClaimsRequest
	if err := c.Bind(&req); err != nil || req.JobID == "" || req.APIKey == "" {
		return mapServiceError(apperr.NewValidationError("jobId", "jobId and apiKey are required"))
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.WriteHeader(http.StatusOK)

	writer := bufio.NewWriter(resp)
	for line := range s.paper.StreamClaims(c.Request().Context(), req.JobID, req.APIKey) {
		if _, err := writer.Write(line); err != nil {
			return nil
		}
		if err := writer.Flush(); err != nil {
			return nil
		}
		resp.Flush()
	}
	return nil
}

// verifyClaimHandler handles POST /api/v1/verify-claim.
func (s *Server) verifyClaimHandler(c *echo.Context) error {
	claimID := c.FormValue("claimId")
	apiKey := c.FormValue("apiKey")
	if claimID == "" || apiKey == "" {
		return mapServiceError(apperr.NewValidationError("claimId", "claimId and apiKey are required"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return mapServiceError(apperr.NewValidationError("file", "a cited source PDF is required"))
	}
	f, err := fileHeader.Open()
	if err != nil {
		return mapServiceError(apperr.NewValidationError("file", "could not be read"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return mapServiceError(apperr.NewValidationError("file", "could not be read"))
	}

	jobID := c.FormValue("jobId")
	result, err := s.paper.VerifyClaim(c.Request().Context(), jobID, claimID, apiKey, data)
	if err != nil {
		return mapServiceError(err)
	}

	evidence := make([]evidenceWire, 0, len(result.Evidence))
	for _, e := range result.Evidence {
		evidence = append(evidence, evidenceWire{
			PaperTitle: e.PaperTitle,
			Page:       e.Page,
			Section:    e.Section,
			Paragraph:  e.Paragraph,
			Excerpt:    e.Excerpt,
		})
	}

	return c.JSON(http.StatusOK, verifyClaimResponse{
		ClaimID:     result.ClaimID,
		Verdict:     string(result.Verdict),
		Confidence:  result.Confidence,
		ReasoningMd: result.ReasoningMd,
		Evidence:    evidence,
	})
}
