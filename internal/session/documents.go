package session

import "contextly/internal/model"

// DocumentSet holds the file descriptors attached to a session, in upload order.
// It is not safe for concurrent use; Session serializes access.
type DocumentSet struct {
	files []model.FileDescriptor
}

// Add appends descriptors after the existing ones, preserving their order.
// Name collisions are allowed.
func (d *DocumentSet) Add(descriptors ...model.FileDescriptor) {
	d.files = append(d.files, descriptors...)
}

// Remove drops every descriptor whose name equals name. Unknown names are a no-op.
func (d *DocumentSet) Remove(name string) int {
	kept := d.files[:0]
	removed := 0
	for _, f := range d.files {
		if f.Name == name {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	// clear the tail so dropped descriptors are not retained by the backing array
	for i := len(kept); i < len(d.files); i++ {
		d.files[i] = model.FileDescriptor{}
	}
	d.files = kept
	return removed
}

// List returns a copy of the current descriptors.
func (d *DocumentSet) List() []model.FileDescriptor {
	out := make([]model.FileDescriptor, len(d.files))
	copy(out, d.files)
	return out
}

func (d *DocumentSet) Len() int {
	return len(d.files)
}
