package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Recomputes every denormalized cache from the edges table: the followers
// array on users and the likes_count counters on videos, comments and tweets.
// Run it after a crash or partial toggle failure left a cache behind.
func main() {
	dryRun := flag.Bool("dry-run", false, "report drift without writing")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if *dryRun {
		reportDrift(db)
		return
	}

	res, err := db.Exec(`UPDATE users u SET followers = COALESCE(
		(SELECT array_agg(e.actor_id ORDER BY e.actor_id) FROM edges e
		 WHERE e.target_id = u.id AND e.target_kind = 'channel'), '{}')`)
	if err != nil {
		log.Fatalf("rebuild followers: %v", err)
	}
	n, _ := res.RowsAffected()
	fmt.Printf("rebuilt followers for %d users\n", n)

	for table, kind := range map[string]string{
		"videos":   "video",
		"comments": "comment",
		"tweets":   "tweet",
	} {
		res, err := db.Exec(fmt.Sprintf(`UPDATE %s t SET likes_count =
			(SELECT count(*) FROM edges e
			 WHERE e.target_id = t.id AND e.target_kind = '%s')`, table, kind))
		if err != nil {
			log.Fatalf("rebuild %s counters: %v", table, err)
		}
		n, _ := res.RowsAffected()
		fmt.Printf("rebuilt likes_count for %d %s\n", n, table)
	}
}

func reportDrift(db *sql.DB) {
	for table, kind := range map[string]string{
		"videos":   "video",
		"comments": "comment",
		"tweets":   "tweet",
	} {
		rows, err := db.Query(fmt.Sprintf(`SELECT t.id, t.likes_count,
			(SELECT count(*) FROM edges e
			 WHERE e.target_id = t.id AND e.target_kind = '%s') AS actual
			FROM %s t`, kind, table))
		if err != nil {
			log.Fatalf("query %s: %v", table, err)
		}
		drifted := 0
		for rows.Next() {
			var id int64
			var cached, actual int64
			if err := rows.Scan(&id, &cached, &actual); err != nil {
				log.Printf("scan: %v", err)
				continue
			}
			if cached != actual {
				fmt.Printf("%s %d: cached=%d actual=%d\n", table, id, cached, actual)
				drifted++
			}
		}
		rows.Close()
		fmt.Printf("%s: %d drifted\n", table, drifted)
	}
}
