package typemap

import "reflect"

// Key identifies a type, or an ordered tuple of types, within a TypeMap.
// Keys built from the same type arguments always compare equal, and keys
// built from distinct type arguments never collide. The zero Key is invalid
// and is rejected by TypeMap operations.
type Key struct {
	rt reflect.Type
}

// Each instantiation of a generic struct has its own reflect.Type, so these
// markers give every ordered tuple of type arguments a distinct identity.
type (
	pair[A any, B any]          struct{}
	triple[A any, B any, C any] struct{}
)

func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// KeyFor returns the key identifying the single type T.
func KeyFor[T any]() Key {
	return Key{rt: typeFor[T]()}
}

// KeyFor2 returns the key identifying the ordered pair of types (A, B).
// KeyFor2[A, B]() and KeyFor2[B, A]() are distinct keys, as are
// KeyFor2[A, A]() and KeyFor[A]().
func KeyFor2[A any, B any]() Key {
	return Key{rt: typeFor[pair[A, B]]()}
}

// KeyFor3 returns the key identifying the ordered triple of types (A, B, C).
func KeyFor3[A any, B any, C any]() Key {
	return Key{rt: typeFor[triple[A, B, C]]()}
}

// IsZero reports whether the key was not produced by one of the KeyFor
// helpers.
func (k Key) IsZero() bool { return k.rt == nil }

// String returns a human-readable representation of the key.
func (k Key) String() string {
	if k.rt == nil {
		return "<zero>"
	}
	return k.rt.String()
}
