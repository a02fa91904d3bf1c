package store

const SaveStoryQuery = `
MERGE (s:Story {id: $id})
SET s.narrative = $narrative,
    s.persona = $persona,
    s.priority = $priority,
    s.grouping_id = $grouping_id,
    s.grouping_area = $grouping_area,
    s.acceptance_criteria = $acceptance_criteria,
    s.rationale = $rationale,
    s.created_at = $created_at
RETURN s.id AS id
`

const ListStoriesQuery = `
MATCH (s:Story {grouping_id: $grouping_id})
RETURN s.id AS id,
       s.narrative AS narrative,
       s.persona AS persona,
       s.grouping_area AS grouping_area,
       s.acceptance_criteria AS acceptance_criteria
ORDER BY s.created_at
`

const UpdateNarrativeQuery = `
MATCH (s:Story {id: $id})
SET s.narrative = $narrative,
    s.acceptance_criteria = $acceptance_criteria,
    s.updated_at = $updated_at
RETURN s.id AS id
`
