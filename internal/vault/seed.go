package vault

import "time"

// Seed data returned when a collection key is absent. The seeds are the
// platform's canonical example records; they are not persisted until an
// explicit write touches the collection, so first-run reads stay
// distinguishable from steady state.

func seedLicenseRequests() []LicenseRequest {
	return []LicenseRequest{
		{
			ID:          "req_seed_meridian",
			StudioName:  "Meridian Pictures",
			ProjectName: "Echoes of Tomorrow",
			RightType:   RightVoiceCloning,
			Status:      RequestPending,
			CreatedAt:   time.Date(2026, time.January, 12, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:          "req_seed_northlight",
			StudioName:  "Northlight Interactive",
			ProjectName: "Starfall: Origins",
			RightType:   RightFaceSynthesis,
			Status:      RequestPending,
			CreatedAt:   time.Date(2026, time.February, 3, 14, 15, 0, 0, time.UTC),
		},
	}
}

func seedCastingCalls() []CastingCall {
	return []CastingCall{
		{
			ID:          "call_seed_drift",
			Title:       "Lead Voice — Sci-Fi Series",
			Studio:      "Meridian Pictures",
			Role:        "Commander Aris Vale",
			Description: "Episodic voice work for an animated sci-fi series; licensed voice clone covers pickup lines between sessions.",
			Budget:      "$12,000–$18,000",
			Deadline:    "2026-10-15",
			Requirements: []string{
				"Verified voice vault asset",
				"Native or near-native English",
				"Prior episodic credits",
			},
		},
		{
			ID:          "call_seed_atlas",
			Title:       "Digital Double — Feature Film",
			Studio:      "Atlas Frame Studios",
			Role:        "Stunt likeness, second unit",
			Description: "Full-likeness capture for crowd and stunt replacement shots; tamper-proof face asset required before contract.",
			Budget:      "$25,000",
			Deadline:    "2026-11-01",
			Requirements: []string{
				"Tamper-proof face asset",
				"On-site capture day in Vancouver",
			},
		},
		{
			ID:          "call_seed_aria",
			Title:       "Narration — Documentary",
			Studio:      "Northlight Interactive",
			Role:        "Narrator",
			Description: "Six-part nature documentary narration with synthetic pickup coverage.",
			Budget:      "$8,500",
			Deadline:    "2026-09-30",
			Requirements: []string{
				"Verified voice vault asset",
				"Warm baritone or alto range",
			},
		},
		{
			ID:          "call_seed_kinetic",
			Title:       "Motion Capture — Game Cinematics",
			Studio:      "Kinetic Forge",
			Role:        "Combat performer",
			Description: "Motion library licensing for in-engine cinematics; movement set reused across two titles.",
			Budget:      "$15,000",
			Deadline:    "2026-12-08",
			Requirements: []string{
				"Motion vault asset",
				"Stage combat certification",
			},
		},
	}
}
