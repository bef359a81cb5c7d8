// Package policy decides which fields of each entity a caller may read, write
// and use in list filters or ordering. Every function is a pure function of
// (role, entity, field).
package policy

// Role is the authorization role of a caller.
type Role int

const (
	RoleNonAdmin Role = iota
	RoleAdmin
)

// RoleFor maps the staff flag of an authenticated caller to a Role.
func RoleFor(isStaff bool) Role {
	if isStaff {
		return RoleAdmin
	}
	return RoleNonAdmin
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "non-admin"
}

// Entity names a record type governed by the policy.
type Entity string

const (
	EntityMember     Entity = "member"
	EntityShift      Entity = "sober_bro_shift"
	EntityAssignment Entity = "sober_bro"
)

// Member field names. They double as column names.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldLegalName    = "legal_name"
	FieldAddress      = "address"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldRollnumber   = "rollnumber"
	FieldMemberScore  = "member_score"
	FieldInactiveFlag = "inactive_flag"
	FieldAbroadFlag   = "abroad_flag"
	FieldTempPassword = "temp_password"
	FieldPresent      = "present"
	FieldPosition     = "position"
)

// Shift and assignment field names.
const (
	FieldDate      = "date"
	FieldTitle     = "title"
	FieldTimeStart = "time_start"
	FieldTimeEnd   = "time_end"
	FieldCapacity  = "capacity"
	FieldShift     = "shift"
	FieldMember    = "member"
)

// CalculatedFields are system-derived member fields. Clients never set them.
var CalculatedFields = []string{FieldMemberScore, FieldPresent, FieldTempPassword}

// PatchLockedFields are calculated fields whose presence in an update
// rejects the whole request.
var PatchLockedFields = []string{FieldMemberScore, FieldPresent}

// ProtectedFields are member fields visible only to admins.
var ProtectedFields = []string{FieldMemberScore, FieldAddress, FieldPresent, FieldTempPassword}

var memberAdminFields = []string{
	FieldID, FieldName, FieldFirstName, FieldLastName, FieldLegalName,
	FieldAddress, FieldEmail, FieldPhone, FieldRollnumber, FieldMemberScore,
	FieldInactiveFlag, FieldAbroadFlag, FieldTempPassword, FieldPresent,
	FieldPosition,
}

var memberNonAdminFields = []string{
	FieldName, FieldFirstName, FieldLastName, FieldPhone, FieldEmail,
	FieldRollnumber, FieldAbroadFlag, FieldInactiveFlag, FieldPosition,
}

var shiftFields = []string{FieldID, FieldDate, FieldTitle, FieldTimeStart, FieldTimeEnd, FieldCapacity}

var shiftWritableFields = []string{FieldDate, FieldTitle, FieldTimeStart, FieldTimeEnd, FieldCapacity}

var assignmentFields = []string{FieldShift, FieldMember}

// ReadableFields returns the fields included in a serialized read.
func ReadableFields(role Role, entity Entity) []string {
	switch entity {
	case EntityMember:
		if role == RoleAdmin {
			return clone(memberAdminFields)
		}
		return clone(memberNonAdminFields)
	case EntityShift:
		return clone(shiftFields)
	case EntityAssignment:
		return clone(assignmentFields)
	}
	return nil
}

// WritableFields returns the fields a write request may target.
func WritableFields(role Role, entity Entity) []string {
	switch entity {
	case EntityMember:
		if role != RoleAdmin {
			return nil
		}
		return without(memberAdminFields, append([]string{FieldID}, CalculatedFields...))
	case EntityShift:
		if role != RoleAdmin {
			return nil
		}
		return clone(shiftWritableFields)
	case EntityAssignment:
		return clone(assignmentFields)
	}
	return nil
}

// FilterableFields returns the fields usable in list filters and ordering.
func FilterableFields(role Role, entity Entity) []string {
	return ReadableFields(role, entity)
}

// KnownFields returns every field the entity has, regardless of role.
func KnownFields(entity Entity) []string {
	return ReadableFields(RoleAdmin, entity)
}

func CanRead(role Role, entity Entity, field string) bool {
	return contains(ReadableFields(role, entity), field)
}

func CanWrite(role Role, entity Entity, field string) bool {
	return contains(WritableFields(role, entity), field)
}

func CanFilter(role Role, entity Entity, field string) bool {
	return contains(FilterableFields(role, entity), field)
}

// IsProtected reports whether field is an admin-only field of entity.
func IsProtected(entity Entity, field string) bool {
	return entity == EntityMember && contains(ProtectedFields, field)
}

// IsCalculated reports whether field is a system-derived member field.
func IsCalculated(field string) bool {
	return contains(CalculatedFields, field)
}

// Shape returns a copy of record holding only the fields role may read.
func Shape(role Role, entity Entity, record map[string]any) map[string]any {
	allowed := ReadableFields(role, entity)
	shaped := make(map[string]any, len(allowed))
	for _, f := range allowed {
		if v, ok := record[f]; ok {
			shaped[f] = v
		}
	}
	return shaped
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

func clone(fields []string) []string {
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

func without(fields, drop []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !contains(drop, f) {
			out = append(out, f)
		}
	}
	return out
}
