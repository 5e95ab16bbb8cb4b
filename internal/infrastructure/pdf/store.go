package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	appbilling "github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/domain/entity"
)

var _ appbilling.PDFStore = (*FileStore)(nil)

// FileStore persiste les documents générés sur le disque. Le nom de fichier
// embarque le client, la période, le numéro et un horodatage pour rester
// unique même après régénération.
type FileStore struct {
	dir string
}

// NewFileStore construit le stockage et crée le répertoire si nécessaire.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("créer le répertoire des PDF: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// SaveFacturePDF écrit le PDF d'une facture et retourne son chemin.
func (s *FileStore) SaveFacturePDF(facture *entity.Facture, clientName string, data []byte) (string, error) {
	name := fmt.Sprintf("Facture_%s_%02d_%d_%d_%d.pdf",
		sanitize(clientName), facture.Month, facture.Year, facture.InvoiceNumber, time.Now().Unix())
	return s.write(name, data)
}

// SaveAvoirPDF écrit le PDF d'un avoir et retourne son chemin.
func (s *FileStore) SaveAvoirPDF(facture *entity.Facture, clientName string, data []byte) (string, error) {
	numero := facture.InvoiceNumber
	name := fmt.Sprintf("Avoir_%s_%02d_%d_%d_%d.pdf",
		sanitize(clientName), facture.Month, facture.Year, numero, time.Now().Unix())
	return s.write(name, data)
}

// Remove efface un document. Ignorer l'absence : le fichier a pu être déplacé.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("supprimer le PDF: %w", err)
	}
	return nil
}

func (s *FileStore) write(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("écrire le PDF: %w", err)
	}
	return path, nil
}

// sanitize remplace tout caractère hors [a-zA-Z0-9_-] par un underscore.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
