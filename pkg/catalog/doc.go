// Package catalog models a relational system's catalog as a navigable,
// refreshable object graph.
//
// A Database owns schemas and principals. Every Schema owns one cache per
// child kind (tables, views, constraints, packages, ...) and populates it
// lazily through a Dictionary of backend requests. Cross references between
// objects (foreign key to referenced constraint, synonym to target, type to
// super type) are stored as Ref keys and resolved through the schema caches
// on demand, so no object holds a pointer into another container.
package catalog
