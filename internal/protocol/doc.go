// Package protocol assembles the final protocol document from the active
// configurations and the captured records, stores it, and reads stored
// documents back.
//
// A document is a meta block between %META_START% and %META_END% followed
// directly by one "id=t1;t2;...;tn;" line per participant in ascending id
// order.
package protocol
