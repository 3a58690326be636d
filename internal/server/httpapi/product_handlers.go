package httpapi

import (
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/server/artifacts"
	"github.com/dmitrijs2005/agritrack/internal/server/auth"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
	"github.com/dmitrijs2005/agritrack/internal/server/services"
	"github.com/gorilla/mux"
)

// formOverhead is the allowance for non-file multipart parts and
// base64 expansion on top of the artifact size limit.
const formOverhead = 1 << 20

type createProductRequest struct {
	ProductID          string `json:"productId"`
	ProductName        string `json:"productName"`
	ProductOrigin      string `json:"productOrigin"`
	ProductCategory    string `json:"productCategory"`
	ProductComposition string `json:"productComposition"`
	NutritionFacts     string `json:"nutritionFacts"`
	Image              string `json:"image"`
	ImageContentType   string `json:"imageContentType"`
	ImageName          string `json:"imageName"`
}

type createProductResponse struct {
	Message   string `json:"message"`
	ProductID string `json:"productId"`
	ImageURL  string `json:"imageUrl"`
}

type updateProductResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.products.List(r.Context())
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ps)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Get(r.Context(), mux.Vars(r)["productId"])
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := s.products.Categories(r.Context())
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cs)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, r, s.logger, common.ErrAuthMissing)
		return
	}

	in, err := s.decodeCreateProduct(w, r)
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}

	p, err := s.products.Create(r.Context(), id.Email, in)
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, createProductResponse{
		Message:   "Product added successfully",
		ProductID: p.ProductID,
		ImageURL:  p.ImageURL,
	})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, r, s.logger, common.ErrAuthMissing)
		return
	}

	var patch models.ProductPatch
	if err := decodeJSON(w, r, maxJSONBody, &patch); err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}

	p, err := s.products.Update(r.Context(), id.Email, mux.Vars(r)["productId"], patch)
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updateProductResponse{Message: "Product updated successfully", Product: p})
}

func (s *Server) decodeCreateProduct(w http.ResponseWriter, r *http.Request) (services.CreateProductInput, error) {
	limit := s.opts.MaxUploadSize + formOverhead
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return decodeProductForm(w, r, limit)
	default:
		// base64 inflates the payload by a third
		return decodeProductJSON(w, r, limit+limit/3)
	}
}

func decodeProductForm(w http.ResponseWriter, r *http.Request, limit int64) (services.CreateProductInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(32 << 20)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return services.CreateProductInput{}, common.Invalid("image", "too large")
		}
		return services.CreateProductInput{}, common.Invalid("body", "malformed form")
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	in := services.CreateProductInput{
		ProductID:          r.FormValue("productId"),
		ProductName:        r.FormValue("productName"),
		ProductOrigin:      r.FormValue("productOrigin"),
		ProductCategory:    r.FormValue("productCategory"),
		ProductComposition: r.FormValue("productComposition"),
		NutritionFacts:     r.FormValue("nutritionFacts"),
	}

	if r.MultipartForm == nil {
		return in, nil
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return services.CreateProductInput{}, common.Invalid("image", "unreadable")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return services.CreateProductInput{}, common.Invalid("image", "unreadable")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	in.Artifact = &artifacts.Artifact{Name: header.Filename, ContentType: contentType, Data: data}
	return in, nil
}

func decodeProductJSON(w http.ResponseWriter, r *http.Request, limit int64) (services.CreateProductInput, error) {
	var req createProductRequest
	if err := decodeJSON(w, r, limit, &req); err != nil {
		return services.CreateProductInput{}, err
	}

	in := services.CreateProductInput{
		ProductID:          req.ProductID,
		ProductName:        req.ProductName,
		ProductOrigin:      req.ProductOrigin,
		ProductCategory:    req.ProductCategory,
		ProductComposition: req.ProductComposition,
		NutritionFacts:     req.NutritionFacts,
	}

	if req.Image == "" {
		return in, nil
	}

	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return services.CreateProductInput{}, common.Invalid("image", "malformed base64")
	}

	contentType := req.ImageContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	in.Artifact = &artifacts.Artifact{Name: req.ImageName, ContentType: contentType, Data: data}
	return in, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
