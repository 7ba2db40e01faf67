package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pillbox/internal/http/respond"
	"github.com/MrJamesThe3rd/pillbox/internal/importer"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

type Handler struct {
	importSvc *importer.Service
	invSvc    *inventory.Service
}

func NewHandler(importSvc *importer.Service, invSvc *inventory.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		invSvc:    invSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported int     `json:"imported"`
	IDs      []int64 `json:"ids"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	inputs, err := h.importSvc.Parse(file)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	ids, err := h.invSvc.ImportProducts(r.Context(), inputs)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if ids == nil {
		ids = []int64{}
	}

	respond.JSON(w, http.StatusCreated, importResponse{Imported: len(ids), IDs: ids})
}
