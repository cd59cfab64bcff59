package service

import (
	"context"
	"strings"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uint) (*model.Category, error)
	Create(ctx context.Context, req CategoryRequest) (*model.Category, error)
	Update(ctx context.Context, id uint, req CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category", id)
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("name is required")
	}

	category := model.Category{Name: name, Description: req.Description}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, storeErr(err, "Category", "name")
	}
	return &category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, req CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("name is required")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category", id)
	}
	category.Name = name
	category.Description = req.Description

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, storeErr(err, "Category", "name")
	}
	return category, nil
}

// Delete refuses while inventory items still belong to the category
func (s *categoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "Category", id)
	}

	used, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if used {
		return apperror.NewConflict("Category has inventory items and cannot be deleted").WithDetail("id", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Category", id)
	}
	return nil
}
