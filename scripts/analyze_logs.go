package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors       int
	Logins            int
	Registrations     int
	AccountLockouts   int
	LockedAttempts    int
	OrdersPlaced      int
	PaymentsCompleted int
	PaymentsDeclined  int
	OrdersCancelled   int
	OrderActivity     map[string]int
	ErrorPatterns     map[string]int
}

func main() {
	today := time.Now().Format("2006-01-02")
	logDir := "./logs"

	stats := &LogStats{
		OrderActivity: make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(logDir, fmt.Sprintf("error-%s.log", today)), stats)
	analyzeInfoLogs(filepath.Join(logDir, fmt.Sprintf("info-%s.log", today)), stats)

	printReport(stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		if strings.Contains(line, "locked after") {
			stats.AccountLockouts++
		}
		if strings.Contains(line, "Login attempt on locked account") {
			stats.LockedAttempts++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.Contains(line, "logged in"):
			stats.Logins++
		case strings.Contains(line, "Registered user ID"):
			stats.Registrations++
		case strings.Contains(line, "placed for user"):
			stats.OrdersPlaced++
			extractOrderActivity(line, stats)
		case strings.Contains(line, "Payment completed"):
			stats.PaymentsCompleted++
			extractOrderActivity(line, stats)
		case strings.Contains(line, "Payment declined"):
			stats.PaymentsDeclined++
			extractOrderActivity(line, stats)
		case strings.Contains(line, "cancelled by user"):
			stats.OrdersCancelled++
			extractOrderActivity(line, stats)
		}
	}
}

func extractOrderActivity(line string, stats *LogStats) {
	orderRegex := regexp.MustCompile(`ORD-[A-Z0-9]+-[A-Z0-9]+`)
	if code := orderRegex.FindString(line); code != "" {
		stats.OrderActivity[code]++
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	// Drop the timestamp prefix and keep the message head
	parts := strings.SplitN(line, ": ", 2)
	if len(parts) == 2 {
		msg := strings.TrimSpace(parts[1])
		if idx := strings.IndexAny(msg, ":,"); idx > 0 {
			msg = msg[:idx]
		}
		stats.ErrorPatterns[msg]++
	}
}

func printReport(stats *LogStats) {
	fmt.Println("\n=== Log Analysis Report ===")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Authentication:")
	fmt.Printf("   Logins: %d\n", stats.Logins)
	fmt.Printf("   Registrations: %d\n", stats.Registrations)
	fmt.Printf("   Account Lockouts: %d\n", stats.AccountLockouts)
	fmt.Printf("   Attempts on Locked Accounts: %d\n", stats.LockedAttempts)

	fmt.Println("\n2. Orders:")
	fmt.Printf("   Placed: %d\n", stats.OrdersPlaced)
	fmt.Printf("   Payments Completed: %d\n", stats.PaymentsCompleted)
	fmt.Printf("   Payments Declined: %d\n", stats.PaymentsDeclined)
	fmt.Printf("   Cancelled: %d\n", stats.OrdersCancelled)

	fmt.Println("\n3. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n4. Most Active Orders:")
	printTop(stats.OrderActivity, 5, "events")

	fmt.Println("\n5. Most Common Errors:")
	printTop(stats.ErrorPatterns, 5, "occurrences")
}

func printTop(counts map[string]int, limit int, unit string) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for k, c := range counts {
		entries = append(entries, entry{k, c})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d %s\n", e.key, e.count, unit)
	}
}
