package entity

// DirectoryFilter is a domain-level filter for querying hospitals and doctors.
// Used by repository layer to avoid coupling with delivery DTOs.
type DirectoryFilter struct {
	Name           string // Filter by name (ILIKE)
	Specialization string // Doctors only (ILIKE)
	ApprovedOnly   bool   // Doctors only
}
