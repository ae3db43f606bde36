package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"

	"github.com/google/uuid"

	lumina "github.com/LakGar/Lumina-sub000"
	"github.com/LakGar/Lumina-sub000/core"
)

var entries = []string{
	"Woke up before sunrise and watched the fog lift off the hills.",
	"Spent the whole morning repotting the tomato seedlings on the balcony.",
	"The meeting ran long again and I left the office after dark.",
	"Tried the new ramen place around the corner. Worth the queue.",
	"Couldn't sleep last night. Too many thoughts about the move.",
	"Finished the last chapter of the novel on the train home.",
	"Long run along the river today. Legs sore, head clear.",
	"Called mom for the first time in three weeks. We talked for an hour.",
	"The presentation went better than I feared. Nobody asked about the budget.",
	"Rain all day. Stayed in and reorganized the bookshelf.",
	"Found an old photo album while cleaning the closet.",
	"First swim of the season. The water was colder than it looked.",
	"Burned the risotto and ordered pizza instead. No regrets.",
	"The interview felt like it went well. Now the waiting starts.",
	"Planted basil and rosemary in the window box.",
	"Missed the last bus and walked home under a full moon.",
	"Started learning the piano piece I've been putting off for a year.",
	"The cat brought in a leaf and presented it like a trophy.",
	"Quiet Sunday. Coffee, crossword, and absolutely nothing else.",
	"Argued with my brother about the inheritance again. Exhausting.",
	"The doctor says the ankle is healing faster than expected.",
	"Tried meditating for ten minutes. Managed about four.",
	"Packed the first boxes for the move. The apartment echoes already.",
	"Watched the storm roll in from the porch with a cup of tea.",
	"Got the promotion. Celebrated with cheap champagne and good friends.",
	"The garden is finally starting to look like the picture in my head.",
	"Lost my keys, found my patience. Eventually found the keys too.",
	"Wrote three pages longhand for the first time in months.",
	"The kids built a fort out of every cushion in the house.",
	"Took the long way home just to drive past the old school.",
	"Baked bread from the starter Nina gave me. Dense, but edible.",
	"A stranger on the train recommended a book. Bought it at the station.",
	"The power was out for four hours. Candles and card games.",
	"Signed the lease. New city, new chapter.",
	"Helped dad fix the fence. Mostly held the nails and listened.",
	"Saw the northern lights from the cabin roof. No photo does it justice.",
	"Skipped the party and regretted nothing. Early night, long book.",
	"The marathon training plan starts Monday. It says so on the fridge.",
	"Sold the old bike to a kid who will actually ride it.",
	"First snow. The whole street went quiet.",
}

var seedFileName = flag.String("src", "", "file of seed entries, one per line")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// seedOwners creates a few owners across tiers so that enrichment
// gating has something to bite on.
var seedOwners = []*core.OwnerProfile{
	{
		OwnerID: "owner-free",
		Tier:    core.TierFree,
		Settings: core.Settings{
			SummaryEnabled: true,
		},
	},
	{
		OwnerID: "owner-pro",
		Tier:    core.TierPro,
		Settings: core.Settings{
			MemoryEnabled:  true,
			SummaryEnabled: true,
			MoodEnabled:    true,
		},
	},
	{
		OwnerID: "owner-premium",
		Tier:    core.TierPremium,
		Settings: core.Settings{
			MemoryEnabled: true,
			MoodEnabled:   true,
		},
	},
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

func main() {
	journal, err := lumina.Open("./journal_db")
	if err != nil {
		panic(err)
	}
	defer journal.Close()

	ctx := context.Background()

	for _, owner := range seedOwners {
		if _, err := journal.OwnerRepository().UpsertProfile(ctx, owner); err != nil {
			panic(err)
		}
	}

	worker, err := journal.NewWorker()
	if err != nil {
		panic(err)
	}

	q, err := journal.NewQueue()
	if err != nil {
		panic(err)
	}
	if err := q.Consume(worker.Process, 4); err != nil {
		panic(err)
	}

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(entries)
	}

	// Spread entries across the seed owners round-robin
	count := 0
	for line := range source {
		owner := seedOwners[count%len(seedOwners)]
		record := &core.EntryRecord{
			EntryID: uuid.NewString(),
			OwnerID: owner.OwnerID,
			RawText: line,
		}
		if _, err := journal.EntryRepository().AddEntries(ctx, record); err != nil {
			panic(err)
		}

		err := q.Enqueue(ctx, &core.ProcessingJob{
			EntryID: record.EntryID,
			OwnerID: record.OwnerID,
			RawText: record.RawText,
		})
		if err != nil {
			panic(err)
		}
		count++
	}

	if err := q.Shutdown(ctx); err != nil {
		panic(err)
	}

	slog.Info("seeding complete", "owners", len(seedOwners), "entries", count)
}
