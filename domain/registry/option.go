package registry

// Option narrows or shapes a store query. Options are interpreted by the
// storage layer: the database backend translates them into SQL, the file
// backend applies them in memory.
type Option func(*Query)

// Condition is a single field comparison.
type Condition struct {
	field string
	value any
	in    bool
}

// Field returns the column or document field name.
func (c Condition) Field() string { return c.field }

// Value returns the comparison value.
func (c Condition) Value() any { return c.value }

// In reports whether the condition is a set-membership test.
func (c Condition) In() bool { return c.in }

// Order is a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the field to sort by.
func (o Order) Field() string { return o.field }

// Ascending reports the sort direction.
func (o Order) Ascending() bool { return o.ascending }

// Query is the accumulated result of applying Options.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
	offset     int
}

// Build folds options into a Query.
func Build(options ...Option) Query {
	var q Query
	for _, opt := range options {
		opt(&q)
	}
	return q
}

// Conditions returns the accumulated conditions.
func (q Query) Conditions() []Condition { return q.conditions }

// Orders returns the accumulated sort specifications.
func (q Query) Orders() []Order { return q.orders }

// LimitValue returns the row limit, 0 meaning unlimited.
func (q Query) LimitValue() int { return q.limit }

// OffsetValue returns the row offset.
func (q Query) OffsetValue() int { return q.offset }

// WithField matches rows where field equals value.
func WithField(field string, value any) Option {
	return func(q *Query) {
		q.conditions = append(q.conditions, Condition{field: field, value: value})
	}
}

// WithFieldIn matches rows where field is one of values.
func WithFieldIn(field string, values any) Option {
	return func(q *Query) {
		q.conditions = append(q.conditions, Condition{field: field, value: values, in: true})
	}
}

// WithLimit caps the number of rows returned.
func WithLimit(limit int) Option {
	return func(q *Query) { q.limit = limit }
}

// WithOffset skips the first offset rows.
func WithOffset(offset int) Option {
	return func(q *Query) { q.offset = offset }
}

// WithOrder sorts by field in the given direction.
func WithOrder(field string, ascending bool) Option {
	return func(q *Query) {
		q.orders = append(q.orders, Order{field: field, ascending: ascending})
	}
}

// WithUsername matches a user by username.
func WithUsername(username string) Option {
	return WithField("username", username)
}

// WithGroupID matches a group by its identifier.
func WithGroupID(id string) Option {
	return WithField("group_id", id)
}

// WithServerName matches a server configuration by name.
func WithServerName(name string) Option {
	return WithField("name", name)
}
