package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"polemia/internal/model"
)

// ReadClaimsFromFile reads claims from a file, one per line. Lines may be
// JSON objects in the upstream collaborator's shape
// ({"claim_id": 1, "claim": "...", "simplified_claim": "..."}) or plain
// claim text. Blank lines and #-comments are skipped. Claims without an id
// get their 1-based line sequence number.
func ReadClaimsFromFile(path string) ([]model.Claim, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []model.Claim
	nextID := 1

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var claim model.Claim
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &claim); err != nil {
				return nil, fmt.Errorf("parse claim line %d: %w", nextID, err)
			}
		} else {
			claim = model.Claim{Text: line}
		}

		if claim.ID == 0 {
			claim.ID = nextID
		}
		nextID++

		claims = append(claims, claim)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
