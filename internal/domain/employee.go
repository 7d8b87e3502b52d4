package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EmployeeInput is an employee record that has not been created yet: every
// attribute except the server-assigned id.
//
// Extra keeps any JSON key the client does not know about (department,
// salary, ...) so that records survive a fetch/update round trip unchanged.
// Numbers in Extra are json.Number and re-encode digit for digit.
type EmployeeInput struct {
	FirstName    string
	LastName     string
	Email        string
	JobTitle     string
	Phone        string
	ImageURL     string
	EmployeeCode string
	Extra        map[string]any

	// unset remembers known keys that were decoded empty: true for null,
	// false for absent. Such a key is written back the same way while its
	// field is still empty.
	unset map[string]bool
}

// Employee is a record as returned by the server.
type Employee struct {
	ID int64
	EmployeeInput
}

const (
	keyID           = "id"
	keyFirstName    = "firstName"
	keyLastName     = "lastName"
	keyEmail        = "email"
	keyJobTitle     = "jobTitle"
	keyPhone        = "phone"
	keyImageURL     = "imageUrl"
	keyEmployeeCode = "employeeCode"
)

func (in *EmployeeInput) stringFields() map[string]*string {
	return map[string]*string{
		keyFirstName:    &in.FirstName,
		keyLastName:     &in.LastName,
		keyEmail:        &in.Email,
		keyJobTitle:     &in.JobTitle,
		keyPhone:        &in.Phone,
		keyImageURL:     &in.ImageURL,
		keyEmployeeCode: &in.EmployeeCode,
	}
}

func (in EmployeeInput) toMap() map[string]any {
	m := make(map[string]any, len(in.Extra)+8)
	for k, v := range in.Extra {
		m[k] = v
	}
	for k, p := range in.stringFields() {
		if *p == "" {
			if null, ok := in.unset[k]; ok {
				if null {
					m[k] = nil
				}
				continue
			}
			// employeeCode is assigned by the server; leave it out until it exists
			if k == keyEmployeeCode {
				continue
			}
		}
		m[k] = *p
	}
	return m
}

func (in EmployeeInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.toMap())
}

func (in *EmployeeInput) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	_, err := in.fromRaw(raw)
	return err
}

// fromRaw consumes the known keys and stores the rest in Extra. The raw id,
// if any, is handed back to the caller.
func (in *EmployeeInput) fromRaw(raw map[string]json.RawMessage) (json.RawMessage, error) {
	*in = EmployeeInput{}
	fields := in.stringFields()

	for k := range fields {
		if _, ok := raw[k]; !ok && k != keyEmployeeCode {
			in.markUnset(k, false)
		}
	}

	var id json.RawMessage
	for k, v := range raw {
		if k == keyID {
			id = v
			continue
		}
		if p, ok := fields[k]; ok {
			if string(v) == "null" {
				in.markUnset(k, true)
				continue
			}
			if err := json.Unmarshal(v, p); err != nil {
				return nil, fmt.Errorf("employee: field %q: %w", k, err)
			}
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		var extra any
		if err := dec.Decode(&extra); err != nil {
			return nil, fmt.Errorf("employee: field %q: %w", k, err)
		}
		if in.Extra == nil {
			in.Extra = make(map[string]any)
		}
		in.Extra[k] = extra
	}
	return id, nil
}

func (in *EmployeeInput) markUnset(k string, null bool) {
	if in.unset == nil {
		in.unset = make(map[string]bool)
	}
	in.unset[k] = null
}

func (e Employee) MarshalJSON() ([]byte, error) {
	m := e.EmployeeInput.toMap()
	m[keyID] = e.ID
	return json.Marshal(m)
}

func (e *Employee) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := e.EmployeeInput.fromRaw(raw)
	if err != nil {
		return err
	}
	e.ID = 0
	if len(id) > 0 && string(id) != "null" {
		if err := json.Unmarshal(id, &e.ID); err != nil {
			return fmt.Errorf("employee: field %q: %w", keyID, err)
		}
	}
	return nil
}

// FullName joins first and last name for display.
func (in EmployeeInput) FullName() string {
	return strings.TrimSpace(in.FirstName + " " + in.LastName)
}

// Matches reports whether term is contained, case-insensitively, in the first
// name, last name or email.
func (in EmployeeInput) Matches(term string) bool {
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(in.FirstName), t) ||
		strings.Contains(strings.ToLower(in.LastName), t) ||
		strings.Contains(strings.ToLower(in.Email), t)
}

// NormalizedEmail is the key used to detect duplicates on import.
func (in EmployeeInput) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(in.Email))
}
