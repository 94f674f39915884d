// Package keys composes the date-bucketed cache keys used by the activity feed.
//
// A bucket changes at local midnight, so yesterday's entries are simply never
// asked for again and age out through their TTL.
package keys

import (
	"strconv"
	"strings"
	"time"
)

const (
	ListNamespace = "allActivities"
	detailPrefix  = "activity"
	detailSuffix  = "details"
)

// Bucket returns "<month>-<day>" for t in t's location. The month is
// zero-based (January is 0) and neither part is padded, which keeps keys
// compatible with entries written by the existing web frontend.
func Bucket(t time.Time) string {
	return strconv.Itoa(int(t.Month())-1) + "-" + strconv.Itoa(t.Day())
}

// Compose joins a namespace and a bucket as "<ns>-<bucket>".
func Compose(ns, bucket string) string {
	return ns + "-" + bucket
}

// List is the key of the activity list for the bucket containing t.
func List(t time.Time) string {
	return Compose(ListNamespace, Bucket(t))
}

// Detail is the key of one activity's detail for the bucket containing t:
// "activity-<id>-details-<bucket>".
func Detail(id int64, t time.Time) string {
	var b strings.Builder
	b.WriteString(detailPrefix)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(id, 10))
	b.WriteByte('-')
	b.WriteString(detailSuffix)
	b.WriteByte('-')
	b.WriteString(Bucket(t))
	return b.String()
}
