package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/artifacts"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/repomanager"
)

const maxProductIDLen = 64

type CreateProductInput struct {
	ProductID          string
	ProductName        string
	ProductOrigin      string
	ProductCategory    string
	ProductComposition string
	NutritionFacts     string
	// Artifact is nil when no image was submitted.
	Artifact *artifacts.Artifact
}

type ProductService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	store           artifacts.Store
	maxArtifactSize int64
	log             logging.Logger
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, store artifacts.Store,
	maxArtifactSize int64, log logging.Logger) *ProductService {
	return &ProductService{
		db:              db,
		repomanager:     m,
		store:           store,
		maxArtifactSize: maxArtifactSize,
		log:             log.With("module", "products"),
	}
}

// Create runs the ingestion pipeline: validate, upload the artifact and wait
// for the upload to finish, then insert the row owned by owner. If the upload
// fails no row is written. If the insert fails after a successful upload the
// object is left behind and logged.
func (s *ProductService) Create(ctx context.Context, owner string, in CreateProductInput) (*models.Product, error) {
	if owner == "" {
		return nil, common.ErrAuthMissing
	}
	if err := s.validateCreate(&in); err != nil {
		return nil, err
	}

	var imageURL string
	if in.Artifact != nil && len(in.Artifact.Data) > 0 {
		url, err := s.store.Put(ctx, *in.Artifact)
		if err != nil {
			s.log.Error(ctx, "artifact upload failed", "product_id", in.ProductID, "error", err)
			if errors.Is(err, common.ErrArtifactStore) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", common.ErrArtifactStore, err)
		}
		imageURL = url
	}

	p, err := s.repomanager.Products(s.db).Create(ctx, &models.Product{
		ProductID:          in.ProductID,
		ProductName:        in.ProductName,
		ProductOrigin:      in.ProductOrigin,
		ProductCategory:    in.ProductCategory,
		ProductComposition: in.ProductComposition,
		NutritionFacts:     in.NutritionFacts,
		Owner:              owner,
		ImageURL:           imageURL,
	})
	if err != nil {
		if imageURL != "" {
			s.log.Warn(ctx, "orphaned artifact", "product_id", in.ProductID, "image_url", imageURL)
		}
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.log.Info(ctx, "product created", "product_id", p.ProductID, "owner", owner)
	return p, nil
}

// Update patches the descriptive fields of a product owned by owner. A
// product owned by someone else is reported as common.ErrorNotFound.
func (s *ProductService) Update(ctx context.Context, owner, productID string, patch models.ProductPatch) (*models.Product, error) {
	if owner == "" {
		return nil, common.ErrAuthMissing
	}
	if strings.TrimSpace(productID) == "" {
		return nil, common.Invalid("productId", "required")
	}
	if patch.Empty() {
		return nil, common.Invalid("body", "no fields to update")
	}
	if patch.ProductName != nil && strings.TrimSpace(*patch.ProductName) == "" {
		return nil, common.Invalid("productName", "must not be empty")
	}

	p, err := s.repomanager.Products(s.db).Update(ctx, productID, owner, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	ps, err := s.repomanager.Products(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return ps, nil
}

func (s *ProductService) Get(ctx context.Context, productID string) (*models.Product, error) {
	p, err := s.repomanager.Products(s.db).GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return p, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]models.ProductCategory, error) {
	cs, err := s.repomanager.Products(s.db).Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return cs, nil
}

func (s *ProductService) validateCreate(in *CreateProductInput) error {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.ProductName = strings.TrimSpace(in.ProductName)

	if in.ProductID == "" {
		return common.Invalid("productId", "required")
	}
	if len(in.ProductID) > maxProductIDLen {
		return common.Invalid("productId", "too long")
	}
	if strings.ContainsFunc(in.ProductID, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == '/'
	}) {
		return common.Invalid("productId", "malformed")
	}
	if in.ProductName == "" {
		return common.Invalid("productName", "required")
	}
	if in.Artifact != nil && s.maxArtifactSize > 0 && int64(len(in.Artifact.Data)) > s.maxArtifactSize {
		return common.Invalid("image", "too large")
	}
	return nil
}
