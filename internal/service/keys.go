package service

import "strconv"

// Cache key builders. Every query shape has exactly one named builder so
// the key namespace stays collision-free and invalidation choices are
// visible at the call site.
//
// Known quirks, kept deliberately (covered by tests):
//   - searchKey uses the raw query string, so "Noor" and "noor" occupy
//     distinct entries even though matching is case-insensitive.
//   - surahNumberKey entries are not invalidated on update/delete; they
//     age out at the list TTL.

// allSurahsKey caches the full-collection snapshot.
const allSurahsKey = "allSurahs"

// surahKey caches a single surah by its internal ID.
func surahKey(id string) string {
	return "surah:" + id
}

// surahNumberKey caches a single surah by its chapter number.
func surahNumberKey(number int) string {
	return "surah:number:" + strconv.Itoa(number)
}

// searchKey caches a search result list under the raw query string.
func searchKey(query string) string {
	return "search:" + query
}
