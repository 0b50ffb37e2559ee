// Package scraper fetches a game top page and extracts its meta block.
//
// The date label, start time and stadium share the #async-gameCard block
// ("9/7（日） 18:00 甲子園"): the first token is taken as the date label, the
// nested <time> element as the start time, and the last token as the stadium.
// Team names are read from the div.bb-gameTeam blocks, home first. All text
// is trimmed with inner whitespace collapsed; names are returned raw, before
// any alias resolution.
package scraper
