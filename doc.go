// Package keysetpager provides keyset (seek) pagination primitives for GORM.
//
// Overview
//
// Pages are sliced by comparing sort values against the boundary row of the
// previous page instead of skipping a row count, so concurrent writes never
// shift a cursor.
//
//   - KeysetPager: orderings of one or two columns where the trailing one is
//     the non-nullable primary key. A nullable leading column sorts NULLS LAST
//     in either direction.
//   - LegacyPager: a single-column seek for orderings that predate those
//     rules.
//   - Pager: picks one of the above with CheckOrdering.
//
// Key concepts
//   - Relation: the filtered, ordered rows being paged. GORMRelation adapts a
//     *gorm.DB query.
//   - OrderList: a validated keyset ordering.
//   - Cursor: an opaque token holding the ordering values of one returned row.
//   - Getters: maps columns to row values for building cursors.
//
// First=N pages forward from After; Last=N returns the N rows preceding
// Before, still in natural order.
package keysetpager
