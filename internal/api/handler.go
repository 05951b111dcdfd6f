package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ledgerline/statement-parser/internal/config"
	"github.com/ledgerline/statement-parser/internal/extractor"
	"github.com/ledgerline/statement-parser/internal/models"
	"github.com/ledgerline/statement-parser/internal/parser"
	"github.com/ledgerline/statement-parser/internal/writer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ParseResponse is the JSON body returned by POST /api/parse.
type ParseResponse struct {
	Count        int                  `json:"count"`
	BatchID      string               `json:"batch_id"`
	Transactions []models.Transaction `json:"transactions"`
}

// uploadError carries the HTTP status a failed upload should produce.
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

type handler struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewApp builds the fiber application with all routes registered. The
// returned app is ready for Listen or for driving through app.Test.
func NewApp(cfg *config.Config, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             32 << 20,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5173, http://localhost:3000",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	h := &handler{cfg: cfg, log: log}
	app.Get("/api/health", h.health)
	app.Post("/api/parse", h.parse)
	app.Post("/api/export", h.export)

	return app
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

func (h *handler) parse(c *fiber.Ctx) error {
	batchID := uuid.NewString()

	txns, err := h.collectUploads(c, batchID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ParseResponse{
		Count:        len(txns),
		BatchID:      batchID,
		Transactions: txns,
	})
}

func (h *handler) export(c *fiber.Ctx) error {
	batchID := uuid.NewString()

	txns, err := h.collectUploads(c, batchID)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	w := &writer.ExcelWriter{}
	if err := w.Write(&buf, txns); err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("workbook export failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("export failed: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=rbc_transactions.xlsx`)
	return c.Send(buf.Bytes())
}

// collectUploads reads every "files" part, parses each PDF, and returns the
// combined transactions in chronological order. The returned slice is never
// nil so the JSON field marshals as [] rather than null.
func (h *handler) collectUploads(c *fiber.Ctx, batchID string) ([]models.Transaction, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, &uploadError{fiber.StatusBadRequest, "invalid multipart form"}
	}

	files := form.File["files"]
	if len(files) == 0 {
		return nil, &uploadError{fiber.StatusBadRequest, "no files uploaded; use form field 'files'"}
	}

	txns := []models.Transaction{}

	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			return nil, &uploadError{fiber.StatusBadRequest,
				fmt.Sprintf("%s is not a PDF file", fh.Filename)}
		}

		data, err := readUpload(fh)
		if err != nil {
			return nil, &uploadError{fiber.StatusBadRequest,
				fmt.Sprintf("could not read %s: %v", fh.Filename, err)}
		}
		if len(data) == 0 {
			return nil, &uploadError{fiber.StatusBadRequest,
				fmt.Sprintf("%s is empty", fh.Filename)}
		}

		stmt, err := h.parseOne(data, fh.Filename)
		if err != nil {
			h.log.Warn().Err(err).Str("batch_id", batchID).Str("file", fh.Filename).
				Msg("statement parse failed")
			return nil, &uploadError{fiber.StatusUnprocessableEntity,
				fmt.Sprintf("failed to parse %s: %v", fh.Filename, err)}
		}

		h.log.Info().Str("batch_id", batchID).Str("file", fh.Filename).
			Str("period", stmt.Period).Int("transactions", len(stmt.Transactions)).
			Msg("statement parsed")
		txns = append(txns, stmt.Transactions...)
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date.Time)
	})

	return txns, nil
}

func (h *handler) parseOne(data []byte, name string) (*models.Statement, error) {
	doc, err := extractor.OpenBytes(data, name)
	if err != nil {
		return nil, err
	}

	p, err := parser.New(models.LayoutRBC, h.cfg, h.log)
	if err != nil {
		return nil, err
	}
	return p.Parse(doc)
}

func respondError(c *fiber.Ctx, err error) error {
	var ue *uploadError
	if errors.As(err, &ue) {
		return c.Status(ue.status).JSON(fiber.Map{"error": ue.msg})
	}
	return err
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
