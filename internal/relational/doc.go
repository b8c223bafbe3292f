// Package relational translates raw filter objects into relational query
// descriptors.
//
// A descriptor is {where: Clause} or {} for the empty filter. The clause is
// a Mapping from keys to constraints, or a Sequence when the filter holds
// array-length constraints that cannot be written as a key/operator/value
// triple:
//
//	{a: 3}                -> {where: {data.a: 3}}
//	{a: {$eq: 4}}         -> {where: {data.a: {$eq: 4}}}
//	{a: {$size: 4}, b: 3} -> {where: [{$size: {path: a, size: 4}}, {data.b: 3}]}
//
// Keys id and labels pass through. Connector keywords become operator tags.
// Every other key, including keywords with no tag such as $all or a typo
// such as $eqq, is namespaced under "data.". Translate never fails.
package relational
