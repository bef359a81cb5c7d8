// Package query turns caller-supplied list parameters into an explicit
// filter specification, checked against the field visibility policy.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/policy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ParamOrderBy = "order_by"

const MsgOrderByFormat = "One or more of your ordering parameters are formatted incorrectly. " +
	"Please ensure they follow the format: ?order_by=name.asc,phone.desc"

var orderTokenPattern = regexp.MustCompile(`^([a-z_]+)\.(asc|desc)$`)

// Predicate is an equality filter on a single column.
type Predicate struct {
	Field string
	Value any
}

// Order is one sort key. Desc selects descending order.
type Order struct {
	Field string
	Desc  bool
}

// Spec is the parsed shape of a list request. Orders are applied in slice
// order, so Orders[0] is the primary sort key.
type Spec struct {
	Predicates []Predicate
	Orders     []Order
}

// filterParam describes a recognized equality filter.
type filterParam struct {
	field     string
	adminOnly bool
	parse     func(string) (any, error)
}

var memberFilters = []filterParam{
	{field: policy.FieldPhone, parse: parseString},
	{field: policy.FieldName, parse: parseName},
	{field: policy.FieldAbroadFlag, parse: parseBool},
	{field: policy.FieldMemberScore, adminOnly: true, parse: parseFloat},
}

// Parse builds the complete Spec for a member list request.
func Parse(params url.Values, role policy.Role) (Spec, error) {
	spec, err := ParseFilters(params, role)
	if err != nil {
		return Spec{}, err
	}

	orders, err := ParseOrdering(params, role)
	if err != nil {
		return Spec{}, err
	}
	spec.Orders = orders

	return spec, nil
}

// ParseFilters reads the recognized member filters from params. Admin-only
// filters are ignored for other roles, as are unrecognized parameters.
func ParseFilters(params url.Values, role policy.Role) (Spec, error) {
	var spec Spec

	for _, f := range memberFilters {
		if !params.Has(f.field) {
			continue
		}
		if f.adminOnly && role != policy.RoleAdmin {
			continue
		}
		if !policy.CanFilter(role, policy.EntityMember, f.field) {
			continue
		}

		value, err := f.parse(params.Get(f.field))
		if err != nil {
			return Spec{}, apierrors.Validation(f.field, err.Error())
		}
		spec.Predicates = append(spec.Predicates, Predicate{Field: f.field, Value: value})
	}

	return spec, nil
}

// ParseOrdering reads the order_by parameter. The whole parameter is
// rejected when any token is malformed (validation error) or names a field
// the role may not sort by (authorization error).
func ParseOrdering(params url.Values, role policy.Role) ([]Order, error) {
	if !params.Has(ParamOrderBy) {
		return nil, nil
	}

	tokens := strings.Split(params.Get(ParamOrderBy), ",")
	orders := make([]Order, 0, len(tokens))
	for _, token := range tokens {
		m := orderTokenPattern.FindStringSubmatch(token)
		if m == nil {
			return nil, apierrors.Validation(ParamOrderBy, MsgOrderByFormat)
		}
		orders = append(orders, Order{Field: m[1], Desc: m[2] == "desc"})
	}

	for _, o := range orders {
		if contains(policy.KnownFields(policy.EntityMember), o.Field) &&
			!policy.CanFilter(role, policy.EntityMember, o.Field) {
			return nil, apierrors.Authorization(ParamOrderBy,
				fmt.Sprintf("You do not have permission to order by %s.", o.Field))
		}
	}

	for _, o := range orders {
		if !policy.CanFilter(role, policy.EntityMember, o.Field) {
			return nil, apierrors.Validation(ParamOrderBy,
				fmt.Sprintf("%s is not a field that can be ordered by.", o.Field))
		}
	}

	return orders, nil
}

// Scope applies the predicates and orders to a GORM query.
func (s Spec) Scope(db *gorm.DB) *gorm.DB {
	return s.OrderScope(s.FilterScope(db))
}

// FilterScope applies only the predicates.
func (s Spec) FilterScope(db *gorm.DB) *gorm.DB {
	for _, p := range s.Predicates {
		db = db.Where(clause.Eq{Column: clause.Column{Name: p.Field}, Value: p.Value})
	}
	return db
}

// OrderScope applies only the orders, then id as a tiebreaker.
func (s Spec) OrderScope(db *gorm.DB) *gorm.DB {
	for _, o := range s.Orders {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Field}, Desc: o.Desc})
	}
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func parseString(raw string) (any, error) {
	return raw, nil
}

// parseName undoes a literal %20 left in the value by double-encoding clients.
func parseName(raw string) (any, error) {
	return strings.ReplaceAll(raw, "%20", " "), nil
}

func parseBool(raw string) (any, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("Must be a valid boolean.")
	}
	return v, nil
}

func parseFloat(raw string) (any, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("A valid number is required.")
	}
	return v, nil
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
