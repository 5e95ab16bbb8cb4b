package domain

import "errors"

// Erreurs de domaine (sans dépendances externes).
var (
	ErrNotFound         = errors.New("ressource introuvable")
	ErrValidation       = errors.New("entrée invalide")
	ErrConflict         = errors.New("conflit avec l'état actuel")
	ErrInvalidState     = errors.New("opération illégale pour le statut de la facture")
	ErrLocked           = errors.New("document verrouillé")
	ErrUnauthorized     = errors.New("non autorisé")
	ErrForbidden        = errors.New("accès refusé")
	ErrEmailAlreadyUsed = errors.New("email déjà enregistré")
	ErrUserNotFound     = errors.New("utilisateur introuvable")
	ErrSettingsNotFound = errors.New("paramètres de facturation introuvables")
)
