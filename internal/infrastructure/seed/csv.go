package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// Columnas reconocidas en la cabecera del CSV (sin distinguir mayúsculas).
const (
	colID       = "id"
	colLabel    = "label"
	colUnit     = "unitofmeasure"
	colPhysical = "qtyphysical"
	colMinimum  = "qtymini"
	colLocation = "location"
	colCategory = "category"
)

// decoderFor envuelve r con el decodificador del charset indicado ("" o utf-8 = sin cambio).
func decoderFor(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "iso-8859-15", "latin9":
		return transform.NewReader(r, charmap.ISO8859_15.NewDecoder()), nil
	}
	return nil, fmt.Errorf("%w: charset %q no soportado", domain.ErrInvalidInput, charset)
}

// ParseCatalogCSV lee un catálogo separado por ';' con cabecera. label y qtyPhysical son
// obligatorios; sin id se genera uno. Acepta qtyMini o qtyMinimum para el mínimo.
func ParseCatalogCSV(r io.Reader, charset string) ([]entity.Product, error) {
	dec, err := decoderFor(r, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dec)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cabecera CSV: %v", domain.ErrInvalidInput, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name == "qtyminimum" {
			name = colMinimum
		}
		idx[name] = i
	}
	if _, ok := idx[colLabel]; !ok {
		return nil, fmt.Errorf("%w: falta la columna label", domain.ErrInvalidInput)
	}
	if _, ok := idx[colPhysical]; !ok {
		return nil, fmt.Errorf("%w: falta la columna qtyPhysical", domain.ErrInvalidInput)
	}

	field := func(rec []string, name string) string {
		if i, ok := idx[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	number := func(rec []string, name string, line int) (int, error) {
		s := field(rec, name)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: línea %d: %s=%q", domain.ErrInvalidInput, line, name, s)
		}
		return n, nil
	}

	var out []entity.Product
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: línea %d: %v", domain.ErrInvalidInput, line, err)
		}
		p := entity.Product{
			ID:            field(rec, colID),
			Label:         field(rec, colLabel),
			UnitOfMeasure: field(rec, colUnit),
			Location:      field(rec, colLocation),
			Category:      field(rec, colCategory),
		}
		if p.Label == "" {
			return nil, fmt.Errorf("%w: línea %d sin label", domain.ErrInvalidInput, line)
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if field(rec, colPhysical) == "" {
			return nil, fmt.Errorf("%w: línea %d sin qtyPhysical", domain.ErrInvalidInput, line)
		}
		if p.QtyPhysical, err = number(rec, colPhysical, line); err != nil {
			return nil, err
		}
		if p.QtyMinimum, err = number(rec, colMinimum, line); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
