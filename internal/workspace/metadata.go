package workspace

import (
	"maps"
)

// Document is the flat key/value mapping persisted for one verb of one
// profile.
type Document map[string]any

// UpdateOptions controls UpdateMetadata. The zero value merges into the
// existing document and initializes the workspace and profile first.
type UpdateOptions struct {
	// Replace makes the new data the entire document.
	Replace bool
	// NoInit skips creating the metadata root and profile directory.
	NoInit bool
}

// Metadata returns the document of verb in profile, or an empty Document
// when none has been written.
func (s *Store) Metadata(workspace, profile, verb string) (Document, error) {
	if err := validProfileName(profile); err != nil {
		return nil, err
	}
	if err := validName("verb", verb); err != nil {
		return nil, err
	}
	workspace = absClean(workspace)
	if _, err := s.Migrate(workspace); err != nil {
		return nil, err
	}
	doc, found, err := s.readDocument(MetadataFile(workspace, profile, verb))
	if err != nil {
		return nil, err
	}
	if !found {
		return Document{}, nil
	}
	return doc, nil
}

// UpdateMetadata writes data as the document of verb in profile and returns
// what was written. By default data is overlaid on the existing document key
// by key.
func (s *Store) UpdateMetadata(workspace, profile, verb string, data Document, opts UpdateOptions) (Document, error) {
	if err := validProfileName(profile); err != nil {
		return nil, err
	}
	if err := validName("verb", verb); err != nil {
		return nil, err
	}
	workspace = absClean(workspace)
	if _, err := s.Migrate(workspace); err != nil {
		return nil, err
	}
	if !opts.NoInit {
		if err := s.InitProfile(workspace, profile, false); err != nil {
			return nil, err
		}
	}

	result := Document{}
	if !opts.Replace {
		existing, err := s.Metadata(workspace, profile, verb)
		if err != nil {
			return nil, err
		}
		maps.Copy(result, existing)
	}
	maps.Copy(result, data)

	if err := s.writeYAML(MetadataFile(workspace, profile, verb), result); err != nil {
		return nil, err
	}
	return result, nil
}

// ActiveMetadata returns the document of verb in the active profile.
func (s *Store) ActiveMetadata(workspace, verb string) (Document, error) {
	profile, err := s.ActiveProfile(workspace)
	if err != nil {
		return nil, err
	}
	return s.Metadata(workspace, profile, verb)
}

// UpdateActiveMetadata merges data into the document of verb in the active
// profile.
func (s *Store) UpdateActiveMetadata(workspace, verb string, data Document) (Document, error) {
	profile, err := s.ActiveProfile(workspace)
	if err != nil {
		return nil, err
	}
	return s.UpdateMetadata(workspace, profile, verb, data, UpdateOptions{})
}
