package validators

import (
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	msgProductName        = "Product name is required and must be between 1 and 255 characters."
	msgProductDescription = "Product description must be less than 1000 characters."
	msgProductPrice       = "Price must be a positive number."
	msgProductStock       = "Stock must be a non-negative integer."

	maxProductName        = 255
	maxProductDescription = 1000
	formMemoryBytes       = 8 << 20
)

// ProductForm is a parsed admin product upload. Close releases the image
// file and any temporary files written while parsing.
type ProductForm struct {
	Input product.CreateProductInput
	file  multipart.File
	form  *multipart.Form
}

func (f *ProductForm) Close() {
	if f == nil {
		return
	}
	if f.file != nil {
		_ = f.file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

// ParseProductForm reads the multipart product form. Fields are checked in
// order: name, description, price, stock. The image is optional.
func ParseProductForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*ProductForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(formMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Upload exceeds the maximum size").
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	form := &ProductForm{form: r.MultipartForm}

	input, err := productFields(r.MultipartForm.Value)
	if err != nil {
		form.Close()
		return nil, err
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		form.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	default:
		form.file = file
		if header.Size > 0 {
			input.Image = &product.ImageUpload{Filename: header.Filename, Size: header.Size, Body: file}
		}
	}

	form.Input = input
	return form, nil
}

func productFields(values map[string][]string) (product.CreateProductInput, error) {
	name, ok := formValue(values, "name")
	name = SanitizeString(name, 0)
	if !ok || name == "" || utf8.RuneCountInString(name) > maxProductName {
		return product.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, msgProductName)
	}

	description, _ := formValue(values, "description")
	description = SanitizeString(description, 0)
	if utf8.RuneCountInString(description) > maxProductDescription {
		return product.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, msgProductDescription)
	}

	rawPrice, _ := formValue(values, "price")
	price, err := strconv.ParseFloat(strings.TrimSpace(rawPrice), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return product.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, msgProductPrice)
	}

	rawStock, _ := formValue(values, "stock")
	stock, err := strconv.Atoi(strings.TrimSpace(rawStock))
	if err != nil || stock < 0 {
		return product.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, msgProductStock)
	}

	return product.CreateProductInput{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
	}, nil
}

func formValue(values map[string][]string, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
